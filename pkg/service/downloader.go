package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Downloader 模型包下载器，下载 zip 并解压到模型目录
type Downloader struct {
	client *http.Client
}

func NewDownloader() *Downloader {
	return &Downloader{
		client: &http.Client{Timeout: 30 * time.Minute},
	}
}

// Download 下载模型包并解压，解压出的首个顶层目录移动为 modelDir
func (d *Downloader) Download(ctx context.Context, url, modelDir string) error {
	if _, err := os.Stat(modelDir); err == nil {
		return fmt.Errorf("模型目录 %s 已存在，请先移除后重试", modelDir)
	}

	zap.S().Infof("开始下载模型包: %s", url)
	startTime := time.Now()

	zipPath, err := d.fetchToTemp(ctx, url)
	if err != nil {
		return err
	}
	defer os.Remove(zipPath)

	zap.S().Infof("下载完成，耗时 %s，开始解压...", time.Since(startTime))

	root := filepath.Dir(absPath(modelDir))
	topDir, err := extract(zipPath, root)
	if err != nil {
		return err
	}

	if err := os.Rename(filepath.Join(root, topDir), modelDir); err != nil {
		return fmt.Errorf("移动模型目录失败: %v", err)
	}

	zap.S().Infof("模型已就绪: %s", modelDir)
	return nil
}

// fetchToTemp 下载到临时文件，返回文件路径
func (d *Downloader) fetchToTemp(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("构造请求失败: %v", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("下载模型包失败: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("下载模型包失败，HTTP 状态码 %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "g2pw-model-*.zip")
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %v", err)
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("写入模型包失败: %v", err)
	}
	return tmp.Name(), nil
}

// extract 解压 zip 到目标目录，返回首个顶层目录名
// 拒绝包含 ".." 的路径穿越条目
func extract(zipPath, dstDir string) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("打开模型包失败: %v", err)
	}
	defer reader.Close()

	topDir := ""
	for _, f := range reader.File {
		name := filepath.Clean(f.Name)
		if name == "." || strings.HasPrefix(name, "..") || strings.Contains(name, ".."+string(os.PathSeparator)) {
			zap.S().Warnf("跳过可疑的压缩包条目: %q", f.Name)
			continue
		}
		if topDir == "" {
			topDir = strings.SplitN(filepath.ToSlash(name), "/", 2)[0]
		}

		target := filepath.Join(dstDir, name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", fmt.Errorf("创建目录失败: %v", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return "", fmt.Errorf("创建目录失败: %v", err)
		}
		if err := extractFile(f, target); err != nil {
			return "", err
		}
	}
	if topDir == "" {
		return "", fmt.Errorf("模型包为空")
	}
	return topDir, nil
}

func extractFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("读取压缩包条目失败: %v", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("创建文件失败: %v", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("解压文件失败: %v", err)
	}
	return nil
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
