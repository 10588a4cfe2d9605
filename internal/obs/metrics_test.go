package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                             "/",
		"/metrics":                     "/metrics",
		"/api/equipos/17":              "/api/equipos/:id",
		"/api/equipos/lista":           "/api/equipos/lista",
		"/api/equipos/tipos":           "/api/equipos/tipos",
		"/api/ordenes/17/estado":       "/api/ordenes/:id/estado",
		"/api/partes/17/detalle":       "/api/partes/:parte_id/detalle",
		"/api/partes/lista/17":         "/api/partes/lista/:id",
		"/api/usuarios/17/role":        "/api/usuarios/:id/role",
		"/api/usuarios/17/permisos":    "/api/usuarios/:id/permisos",
		"/api/usuarios/lista":          "/api/usuarios/lista",
		"/api/ordenes/lista":           "/api/ordenes/lista",
		"/api/ubicaciones?entity=obra": "/api/ubicaciones",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
