package service

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// buildModelZip 构造一个模型包 zip：顶层目录 G2PWModel-v2/ 下若干文件
func buildModelZip(t *testing.T, withEvil bool) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	files := map[string]string{
		"G2PWModel-v2/POLYPHONIC_CHARS.txt": "都\tㄉㄡ1\n",
		"G2PWModel-v2/vocab.txt":            "[PAD]\n[UNK]\n[CLS]\n[SEP]\n",
	}
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("创建 zip 条目失败: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("写入 zip 条目失败: %v", err)
		}
	}
	if withEvil {
		f, err := w.Create("../evil.txt")
		if err != nil {
			t.Fatalf("创建 zip 条目失败: %v", err)
		}
		f.Write([]byte("bad"))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("关闭 zip 失败: %v", err)
	}
	return buf.Bytes()
}

// TestDownload 测试下载解压并移动为模型目录
func TestDownload(t *testing.T) {
	zipData := buildModelZip(t, false)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipData)
	}))
	defer server.Close()

	modelDir := filepath.Join(t.TempDir(), "G2PWModel")
	downloader := NewDownloader()
	if err := downloader.Download(context.Background(), server.URL, modelDir); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(modelDir, "POLYPHONIC_CHARS.txt")); err != nil {
		t.Errorf("模型文件未解压到位: %v", err)
	}
	if _, err := os.Stat(filepath.Join(modelDir, "vocab.txt")); err != nil {
		t.Errorf("模型文件未解压到位: %v", err)
	}
}

// TestDownloadExistingDir 测试模型目录已存在时拒绝覆盖
func TestDownloadExistingDir(t *testing.T) {
	modelDir := t.TempDir()
	downloader := NewDownloader()
	if err := downloader.Download(context.Background(), "http://127.0.0.1:0", modelDir); err == nil {
		t.Fatal("已存在的模型目录应报错")
	}
}

// TestDownloadHTTPError 测试非 200 响应
func TestDownloadHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	modelDir := filepath.Join(t.TempDir(), "G2PWModel")
	downloader := NewDownloader()
	if err := downloader.Download(context.Background(), server.URL, modelDir); err == nil {
		t.Fatal("HTTP 404 应报错")
	}
}

// TestExtractSkipsTraversal 测试路径穿越条目被跳过
func TestExtractSkipsTraversal(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "model.zip")
	if err := os.WriteFile(zipPath, buildModelZip(t, true), 0644); err != nil {
		t.Fatalf("写入 zip 失败: %v", err)
	}

	dstDir := t.TempDir()
	topDir, err := extract(zipPath, dstDir)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if topDir != "G2PWModel-v2" {
		t.Errorf("topDir = %q, want G2PWModel-v2", topDir)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dstDir), "evil.txt")); err == nil {
		t.Error("路径穿越条目不应被解压")
	}
}
