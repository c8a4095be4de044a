package model

// AutoMigrateModels 由 AutoMigrate 管理的表
// user_logs 为分区表，不在此列，见 pkg/database/partitions
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&User{},
		&Branch{}, &PriceGroup{}, &PriceGroupImage{},
		&AccessRequest{},
		&UserGroupAccess{}, &UserBranch{},
		&RolePermission{}, &RolePermissionConfig{},
		&Announcement{}, &AnnouncementImage{},
		&PushSubscription{},
	}
}
