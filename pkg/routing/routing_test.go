package routing

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Class
	}{
		{"/dashboard", Protected},
		{"/dashboard/overview", Protected},
		{"/members", Protected},
		{"/members/abc123", Protected},
		{"/classes", Protected},
		{"/trainers", Protected},
		{"/settings", Protected},
		{"/settings/billing", Protected},
		{"/profile", Protected},
		{"/login", AuthOnly},
		{"/login/", AuthOnly},
		{"/signup", AuthOnly},
		{"/", Public},
		{"/pricing", Public},
		{"/about", Public},
		{"", Public},
		// Matching is case-sensitive
		{"/Dashboard", Public},
		{"/LOGIN", Public},
	}

	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		class         Class
		want          Decision
	}{
		{"anonymous on protected path", false, Protected, RedirectLogin},
		{"anonymous on auth-only path", false, AuthOnly, Allow},
		{"anonymous on public path", false, Public, Allow},
		{"authenticated on protected path", true, Protected, Allow},
		{"authenticated on auth-only path", true, AuthOnly, RedirectHome},
		{"authenticated on public path", true, Public, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.authenticated, tt.class); got != tt.want {
				t.Errorf("Decide(%v, %v) = %v, want %v", tt.authenticated, tt.class, got, tt.want)
			}
		})
	}
}

// Every (authenticated, class) pair must map to exactly one decision.
func TestDecideIsTotal(t *testing.T) {
	for _, authenticated := range []bool{false, true} {
		for _, class := range []Class{Public, Protected, AuthOnly} {
			d := Decide(authenticated, class)
			if d != Allow && d != RedirectLogin && d != RedirectHome {
				t.Errorf("Decide(%v, %v) returned unknown decision %v", authenticated, class, d)
			}
		}
	}
}

func TestDecideDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Decide(false, Classify("/dashboard")); got != RedirectLogin {
			t.Fatalf("run %d: Decide = %v, want RedirectLogin", i, got)
		}
		if got := Decide(true, Classify("/login")); got != RedirectHome {
			t.Fatalf("run %d: Decide = %v, want RedirectHome", i, got)
		}
	}
}

func TestClassString(t *testing.T) {
	if Public.String() != "public" || Protected.String() != "protected" || AuthOnly.String() != "auth-only" {
		t.Errorf("unexpected Class string values: %v %v %v", Public, Protected, AuthOnly)
	}
}

func TestDecisionString(t *testing.T) {
	if Allow.String() != "allow" || RedirectLogin.String() != "redirect-login" || RedirectHome.String() != "redirect-home" {
		t.Errorf("unexpected Decision string values: %v %v %v", Allow, RedirectLogin, RedirectHome)
	}
}
