package checkcache

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		key, region, want string
	}{
		{"user-42", "users", "users-user-42"},
		{"User-42", "Users", "users-user-42"},
		{"ABC", "", "abc"},
		{"users-user-42", "users", "users-user-42"},
		{"orders-1", "users", "users-orders-1"},
	}
	for _, tc := range cases {
		got := Normalize(tc.key, tc.region)
		if got != tc.want {
			t.Fatalf("Normalize(%q, %q) = %q, want %q", tc.key, tc.region, got, tc.want)
		}
		if again := Normalize(got, tc.region); again != got {
			t.Fatalf("Normalize not idempotent: %q -> %q", got, again)
		}
	}
}

func TestRegionOf(t *testing.T) {
	cases := map[string]string{
		"users-user-42": "users",
		"abc":           RegionNone,
		"-abc":          RegionNone,
		"orders-1":      "orders",
	}
	for key, want := range cases {
		if got := regionOf(key); got != want {
			t.Fatalf("regionOf(%q) = %q, want %q", key, got, want)
		}
	}
	if regionName("") != RegionNone || regionName("Users") != "users" {
		t.Fatalf("regionName mismatch")
	}
}

func TestNormalizeRegionPrefixedKeysShareEntry(t *testing.T) {
	if Normalize("b", "a") != Normalize("a-b", "a") {
		t.Fatalf("a key carrying its region prefix must map to the prefixed entry")
	}
	if got := Normalize("b-a", "a"); got != "a-b-a" {
		t.Fatalf("Normalize(b-a, a) = %q, only a leading region prefix is kept", got)
	}
}
