package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Scale(Vec3{2, 3, 4})
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestScale(t *testing.T) {
	m := Scale(Vec3{2, 3, 4})

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(Vec3{2, 2, 2})
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestTranspose(t *testing.T) {
	var m Mat4
	for i := range m {
		m[i] = float32(i)
	}
	tr := m.Transpose()
	if tr[1] != m[4] || tr[4] != m[1] || tr[14] != m[11] {
		t.Errorf("Transpose mismatch: %v", tr)
	}
	if tr.Transpose() != m {
		t.Error("double transpose should be identity")
	}
}

func TestInverseTransposeOfScale(t *testing.T) {
	m := Scale(Vec3{2, 4, 0.5}).InverseTranspose()

	tests := []struct {
		in, want Vec3
	}{
		{Vec3{1, 0, 0}, Vec3{0.5, 0, 0}},
		{Vec3{0, 1, 0}, Vec3{0, 0.25, 0}},
		{Vec3{0, 0, 1}, Vec3{0, 0, 2}},
	}
	for _, tt := range tests {
		got := m.TransformDirection(tt.in)
		if !PointsEqual(got, tt.want, 1e-6) {
			t.Errorf("TransformDirection(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInverseSingular(t *testing.T) {
	if got := (Mat4{}).Inverse(); got != Identity() {
		t.Errorf("singular inverse = %v, want identity", got)
	}
}
