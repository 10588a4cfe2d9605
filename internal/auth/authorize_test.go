package auth

import "testing"

func TestDecideAdminRoleAnyCasing(t *testing.T) {
	for _, role := range []string{"admin", "ADMIN", " Admin ", "\tadmin\n"} {
		claims := &Claims{UserID: 9, Role: role}
		if d := Decide(claims, ActionOrdersList); !d.ViewAll() {
			t.Fatalf("role %q should widen to every row", role)
		}
	}
}

func TestDecideGrantAllPermission(t *testing.T) {
	claims := &Claims{UserID: 9, Role: "user", Permisos: PermisoList{"ordenes:ver_todas"}}
	if d := Decide(claims, ActionOrdersList); !d.ViewAll() {
		t.Fatal("ordenes:ver_todas should widen to every row")
	}

	// CSV form must behave identically to the array form
	claims = &Claims{UserID: 9, Role: "user", Permisos: PermisoList{"Maquinista, Ordenes:Ver_Todas"}}
	if d := Decide(claims, ActionOrdersList); !d.ViewAll() {
		t.Fatal("CSV permisos should widen to every row")
	}
}

func TestDecideAdminPermissionTag(t *testing.T) {
	claims := &Claims{UserID: 3, Role: "user", Permisos: PermisoList{"admin"}}
	if d := Decide(claims, ActionOrdersList); !d.ViewAll() {
		t.Fatal("admin tag should widen to every row")
	}
}

func TestDecideDefaultsToOwnRows(t *testing.T) {
	claims := &Claims{UserID: 17, Role: "user"}
	d := Decide(claims, ActionOrdersList)
	if d.ViewAll() {
		t.Fatal("plain user must not see every row")
	}
	if d.OwnerID != 17 {
		t.Fatalf("expected owner 17, got %d", d.OwnerID)
	}
}

func TestDecideNilClaims(t *testing.T) {
	if d := Decide(nil, ActionOrdersList); d.ViewAll() {
		t.Fatal("nil claims must not widen")
	}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(&Claims{Role: " ADMIN "}) {
		t.Fatal("role admin expected")
	}
	if !IsAdmin(&Claims{Role: "user", Permisos: PermisoList{"Admin"}}) {
		t.Fatal("permission admin expected")
	}
	if IsAdmin(&Claims{Role: "user", Permisos: PermisoList{"ordenes:ver_todas"}}) {
		t.Fatal("ver_todas alone is not admin")
	}
	if IsAdmin(nil) {
		t.Fatal("nil claims is never admin")
	}
}
