package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ==================== 接口定义 ====================

// StorageProvider 存储提供者接口
// key 为相对路径，如 price-groups/3/xxx.jpg
type StorageProvider interface {
	// Put 写入文件
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Delete 删除文件，不存在时不报错
	Delete(ctx context.Context, key string) error

	// URL 公开访问地址
	URL(key string) string
}

// ==================== 配置 ====================

type StorageConfig struct {
	Provider  string // "s3" | "local"
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // S3 兼容存储的自定义端点
	CDNDomain string // CDN域名 (可选)
	BasePath  string // s3: key 前缀；local: 本地根目录
	PublicURL string // local: 对外访问前缀
}

// ==================== 工厂方法 ====================

func NewStorageProvider(cfg StorageConfig) (StorageProvider, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Storage(cfg)
	case "local", "":
		return NewLocalStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}

// ==================== StorageService 图片上传 ====================

// 上传限制
const (
	MaxUploadSize = 10 << 20
)

// AllowedImageTypes 允许的图片类型
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// UploadFile 待上传文件
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// StoredFile 已保存文件
type StoredFile struct {
	Path     string // 以 / 开头的存储路径
	FileName string // 原始文件名
	Size     int64
	MimeType string
}

// StorageService 存储服务，负责校验与命名
type StorageService struct {
	provider StorageProvider
	maxSize  int64
	allowed  map[string]bool
}

// NewStorageService 创建存储服务
func NewStorageService(cfg StorageConfig) (*StorageService, error) {
	provider, err := NewStorageProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewStorageServiceWithProvider(provider), nil
}

// NewStorageServiceWithProvider 使用已有 provider
func NewStorageServiceWithProvider(provider StorageProvider) *StorageService {
	allowed := make(map[string]bool, len(AllowedImageTypes))
	for _, t := range AllowedImageTypes {
		allowed[t] = true
	}
	return &StorageService{
		provider: provider,
		maxSize:  MaxUploadSize,
		allowed:  allowed,
	}
}

// GetProvider 获取底层 Provider
func (s *StorageService) GetProvider() StorageProvider {
	return s.provider
}

// SaveImage 校验并保存图片到 dir 目录，文件名为 uuid
func (s *StorageService) SaveImage(ctx context.Context, dir string, file UploadFile) (*StoredFile, error) {
	size := int64(len(file.Data))
	if size == 0 {
		return nil, ErrInvalidFileType
	}
	if size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	mimeType := file.ContentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(file.Data)
	}
	if !s.allowed[mimeType] {
		return nil, ErrInvalidFileType
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == "" {
		ext = extensionFor(mimeType)
	}
	key := path.Join(strings.Trim(dir, "/"), uuid.NewString()+ext)

	if err := s.provider.Put(ctx, key, file.Data, mimeType); err != nil {
		return nil, fmt.Errorf("save %s: %w", key, err)
	}

	return &StoredFile{
		Path:     "/" + key,
		FileName: file.Name,
		Size:     size,
		MimeType: mimeType,
	}, nil
}

// Remove 删除已保存文件
func (s *StorageService) Remove(ctx context.Context, storedPath string) error {
	if storedPath == "" {
		return nil
	}
	return s.provider.Delete(ctx, strings.TrimPrefix(storedPath, "/"))
}

// URL 文件访问地址
func (s *StorageService) URL(storedPath string) string {
	return s.provider.URL(strings.TrimPrefix(storedPath, "/"))
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// ==================== S3 实现 ====================

type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	cdnDomain string
	basePath  string
}

func NewS3Storage(cfg StorageConfig) (*S3Storage, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	// 自定义端点时按 S3 兼容存储处理
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		cdnDomain: cfg.CDNDomain,
		basePath:  strings.Trim(cfg.BasePath, "/"),
	}, nil
}

func (s *S3Storage) objectKey(key string) string {
	if s.basePath == "" {
		return key
	}
	return s.basePath + "/" + key
}

func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put: %w", err)
	}
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	return err
}

func (s *S3Storage) URL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, s.objectKey(key))
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, s.objectKey(key))
}

// ==================== 本地存储 ====================

// LocalFilesRoute 本地文件的访问路由前缀
const LocalFilesRoute = "/api/files"

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(cfg StorageConfig) (*LocalStorage, error) {
	root := cfg.BasePath
	if root == "" {
		root = "./uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Root 本地根目录
func (s *LocalStorage) Root() string {
	return s.root
}

// resolve key 转本地路径，拒绝跳出根目录
func (s *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", errors.New("empty storage key")
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(key string) string {
	return s.baseURL + LocalFilesRoute + path.Clean("/"+key)
}
