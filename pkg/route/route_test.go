package route

import (
	"reflect"
	"testing"

	"github.com/vanderheijden86/devsetup/pkg/catalog"
)

func mustCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestResolve(t *testing.T) {
	c := mustCatalog(t)

	tests := []struct {
		path  string
		kind  Kind
		guide string
	}{
		{"/", Home, ""},
		{"", Home, ""},
		{"//", Home, ""},
		{"/lemp-guide", Guide, "lemp-stack"},
		{"lemp-guide", Guide, "lemp-stack"},
		{"/mqtt-guide/", Guide, "mqtt-setup"},
		{"/phpmyadmin-import-guide?x=1", Guide, "phpmyadmin-import-size"},
		{"/phpmyadmin-504-guide#step-2", Guide, "phpmyadmin-504-timeout"},
		{"/secure-mqtt-guide", Guide, "secure-mqtt-setup"},
		{"/kubernetes-setup", NotFound, ""},
		{"/does/not/exist", NotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v := Resolve(c, tt.path)
			if v.Kind != tt.kind {
				t.Fatalf("Resolve(%q).Kind = %v, want %v", tt.path, v.Kind, tt.kind)
			}
			if tt.guide != "" && (v.Guide == nil || v.Guide.ID != tt.guide) {
				t.Errorf("Resolve(%q) guide = %+v, want %s", tt.path, v.Guide, tt.guide)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	c := mustCatalog(t)

	v, ok := Open(c, "mqtt-setup")
	if !ok || v.Kind != Guide || v.Path != "/mqtt-guide" {
		t.Errorf("Open(mqtt-setup) = %+v, %v", v, ok)
	}

	v, ok = Open(c, "python-setup")
	if ok || v.Kind != Home {
		t.Errorf("Open(python-setup) = %+v, %v; want stay on home", v, ok)
	}
	g, _ := c.Guide("python-setup")
	if msg := ComingSoon(g); msg != "python-setup guide coming soon!" {
		t.Errorf("ComingSoon = %q", msg)
	}

	if v, ok := Open(c, "ghost"); ok || v.Kind != NotFound {
		t.Errorf("Open(ghost) = %+v, %v", v, ok)
	}
}

func TestPaths(t *testing.T) {
	c := mustCatalog(t)
	want := []string{
		"/",
		"/lemp-guide",
		"/phpmyadmin-import-guide",
		"/phpmyadmin-504-guide",
		"/mqtt-guide",
		"/secure-mqtt-guide",
	}
	if got := Paths(c); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths = %v, want %v", got, want)
	}
}

func TestKindString(t *testing.T) {
	if Home.String() != "home" || Guide.String() != "guide" || NotFound.String() != "not-found" {
		t.Error("unexpected Kind strings")
	}
}
