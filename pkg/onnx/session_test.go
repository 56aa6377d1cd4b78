package onnx

import "testing"

// TestFlattenInt64 测试二维张量数据展平
func TestFlattenInt64(t *testing.T) {
	flat := flattenInt64([][]int64{{1, 2, 3}, {4, 5, 6}})
	want := []int64{1, 2, 3, 4, 5, 6}
	if len(flat) != len(want) {
		t.Fatalf("len = %d, want %d", len(flat), len(want))
	}
	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("flat[%d] = %d, want %d", i, flat[i], want[i])
		}
	}

	if flattenInt64(nil) != nil {
		t.Error("空输入应返回 nil")
	}
}

// TestFlattenFloat32 测试掩码数据展平
func TestFlattenFloat32(t *testing.T) {
	flat := flattenFloat32([][]float32{{1, 0}, {0, 1}})
	want := []float32{1, 0, 0, 1}
	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("flat[%d] = %v, want %v", i, flat[i], want[i])
		}
	}
}

// TestDefaultLibraryPath 测试平台默认动态库名非空
func TestDefaultLibraryPath(t *testing.T) {
	if defaultLibraryPath() == "" {
		t.Fatal("默认动态库名不应为空")
	}
}
