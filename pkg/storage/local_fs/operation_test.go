package local_fs

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func TestLocalFS_SendFile(t *testing.T) {
	tempDir := t.TempDir()

	client, err := NewClient(&Config{
		SavePath: tempDir,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	filename := "capture.png"
	content := "not really a png"
	modTime := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	reader := strings.NewReader(content)

	savedPath, err := client.SendFile(filename, reader, "image/png", modTime)
	if err != nil {
		t.Fatalf("SendFile failed: %v", err)
	}

	if _, err := os.Stat(savedPath); os.IsNotExist(err) {
		t.Fatalf("File not found at %s", savedPath)
	}

	savedContent, err := os.ReadFile(savedPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if string(savedContent) != content {
		t.Errorf("Content mismatch: expected %s, got %s", content, string(savedContent))
	}

	fileInfo, err := os.Stat(savedPath)
	if err != nil {
		t.Fatalf("Failed to stat saved file: %v", err)
	}
	// Filesystem timestamp precision differs across platforms
	// 不同平台的文件系统时间精度不同
	if !fileInfo.ModTime().Equal(modTime) {
		diff := fileInfo.ModTime().Sub(modTime)
		if diff < -time.Second || diff > time.Second {
			t.Errorf("ModTime mismatch: expected %v, got %v (diff %v)", modTime, fileInfo.ModTime(), diff)
		}
	}
}

func TestLocalFS_SendContent(t *testing.T) {
	tempDir := t.TempDir()

	client, err := NewClient(&Config{
		SavePath: tempDir,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	// A subdirectory ensures SendContent creates intermediate directories
	// 子目录用于确认 SendContent 会创建中间目录
	filename := "202401/01/capture.png"
	content := []byte("screenshot bytes")
	modTime := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	savedPath, err := client.SendContent(filename, content, modTime)
	if err != nil {
		t.Fatalf("SendContent failed: %v", err)
	}

	savedContent, err := os.ReadFile(savedPath)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(savedContent, content) {
		t.Errorf("Content mismatch: expected %s, got %s", content, string(savedContent))
	}
}

func TestLocalFS_Delete(t *testing.T) {
	tempDir := t.TempDir()

	client, err := NewClient(&Config{
		SavePath: tempDir,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	savedPath, err := client.SendContent("gone.png", []byte("x"), time.Time{})
	if err != nil {
		t.Fatalf("SendContent failed: %v", err)
	}

	if err := client.Delete("gone.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(savedPath); !os.IsNotExist(err) {
		t.Errorf("file should be gone, stat err = %v", err)
	}

	// Deleting a missing key is a no-op
	// 删除不存在的键为空操作
	if err := client.Delete("missing.png"); err != nil {
		t.Errorf("Delete missing key should not error: %v", err)
	}
}
