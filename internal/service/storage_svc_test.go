package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000000000000000")

func TestNewStorageService_Local(t *testing.T) {
	svc, err := NewStorageService(StorageConfig{
		Provider: "local",
		BasePath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewStorageService() error = %v", err)
	}
	if svc.GetProvider() == nil {
		t.Error("GetProvider() 返回 nil")
	}
}

func TestNewStorageService_InvalidProvider(t *testing.T) {
	if _, err := NewStorageService(StorageConfig{Provider: "invalid"}); err == nil {
		t.Error("期望返回错误，但未返回")
	}
}

func TestStorageService_SaveImage(t *testing.T) {
	root := t.TempDir()
	svc, err := NewStorageService(StorageConfig{Provider: "local", BasePath: root, PublicURL: "http://localhost:8080/"})
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	ctx := context.Background()

	stored, err := svc.SaveImage(ctx, "price-groups/3", UploadFile{Name: "Menu.PNG", ContentType: "image/png", Data: pngHeader})
	if err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}

	if !strings.HasPrefix(stored.Path, "/price-groups/3/") || !strings.HasSuffix(stored.Path, ".png") {
		t.Errorf("Path = %v", stored.Path)
	}
	if stored.FileName != "Menu.PNG" || stored.Size != int64(len(pngHeader)) || stored.MimeType != "image/png" {
		t.Errorf("stored = %+v", stored)
	}

	full := filepath.Join(root, filepath.FromSlash(stored.Path))
	if _, err := os.Stat(full); err != nil {
		t.Fatalf("文件未写入: %v", err)
	}

	if got := svc.URL(stored.Path); got != "http://localhost:8080/api/files"+stored.Path {
		t.Errorf("URL() = %v", got)
	}

	if err := svc.Remove(ctx, stored.Path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(full); !os.IsNotExist(err) {
		t.Error("文件未删除")
	}
	// 重复删除不报错
	if err := svc.Remove(ctx, stored.Path); err != nil {
		t.Errorf("Remove(again) error = %v", err)
	}
}

func TestStorageService_SaveImageRejects(t *testing.T) {
	svc, _ := NewStorageService(StorageConfig{Provider: "local", BasePath: t.TempDir()})
	ctx := context.Background()

	tests := []struct {
		name string
		file UploadFile
		want error
	}{
		{"empty", UploadFile{Name: "a.png", ContentType: "image/png"}, ErrInvalidFileType},
		{"gif", UploadFile{Name: "a.gif", ContentType: "image/gif", Data: []byte("GIF89a")}, ErrInvalidFileType},
		{"too large", UploadFile{Name: "a.jpg", ContentType: "image/jpeg", Data: make([]byte, MaxUploadSize+1)}, ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SaveImage(ctx, "x", tt.file); !errors.Is(err, tt.want) {
				t.Errorf("SaveImage() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStorageService_DetectsType(t *testing.T) {
	svc, _ := NewStorageService(StorageConfig{Provider: "local", BasePath: t.TempDir()})

	stored, err := svc.SaveImage(context.Background(), "x", UploadFile{Name: "noext", Data: pngHeader})
	if err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}
	if stored.MimeType != "image/png" || !strings.HasSuffix(stored.Path, ".png") {
		t.Errorf("stored = %+v, want detected png", stored)
	}
}

func TestLocalStorage_PathTraversal(t *testing.T) {
	root := t.TempDir()
	local, _ := NewLocalStorage(StorageConfig{BasePath: root})

	if err := local.Put(context.Background(), "../../etc/evil", []byte("x"), "text/plain"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	// 被限制在根目录内
	if _, err := os.Stat(filepath.Join(root, "etc", "evil")); err != nil {
		t.Errorf("文件应写在根目录内: %v", err)
	}
}
