package texture

import "testing"

func TestRoleTable(t *testing.T) {
	tests := []struct {
		role    Role
		unit    int
		bound   bool
		sampler string
		space   ColorSpace
	}{
		{RoleBaseColor, 0, true, "texture_diffuse1", SRGB},
		{RoleNormal, 1, true, "texture_normal1", Linear},
		{RoleMetallicRoughness, 2, true, "texture_metallicRoughness1", Linear},
		{RoleHeight, 3, true, "texture_height1", Linear},
		{RoleSpecular, 0, false, "texture_specular1", Linear},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			unit, ok := tt.role.Unit()
			if ok != tt.bound || (ok && unit != tt.unit) {
				t.Errorf("Unit() = %d, %v; want %d, %v", unit, ok, tt.unit, tt.bound)
			}
			if got := tt.role.Sampler(); got != tt.sampler {
				t.Errorf("Sampler() = %q, want %q", got, tt.sampler)
			}
			if got := tt.role.ColorSpace(); got != tt.space {
				t.Errorf("ColorSpace() = %v, want %v", got, tt.space)
			}
		})
	}
}

func TestRoleInvalid(t *testing.T) {
	r := Role(42)
	if r.Valid() {
		t.Error("Role(42) should be invalid")
	}
	if _, ok := r.Unit(); ok {
		t.Error("invalid role should have no unit")
	}
	if r.Sampler() != "" {
		t.Error("invalid role should have no sampler")
	}
	if RoleCount.Valid() {
		t.Error("RoleCount is not a role")
	}
}

func TestUVTransformPacked(t *testing.T) {
	uv := UVTransform{Offset: [2]float32{0.1, 0.2}, Scale: [2]float32{2, 3}, Rotation: 0.5}
	got := uv.Packed()
	want := [4]float32{0.1, 0.2, 2, 3}
	if [4]float32(got) != want {
		t.Errorf("Packed() = %v, want %v", got, want)
	}

	id := IdentityUV()
	if id.Scale != [2]float32{1, 1} || id.Offset != [2]float32{} || id.Rotation != 0 {
		t.Errorf("IdentityUV() = %+v", id)
	}
}
