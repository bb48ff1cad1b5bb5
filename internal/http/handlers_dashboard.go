package httpx

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"
)

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>tenderwatch</title>
</head>
<body>
<header>
<h1>tenderwatch</h1>
<form method="post" action="/auth/logout">
<input type="hidden" name="redirect_uri" value="/dashboard">
<button type="submit">Sign out</button>
</form>
</header>
<main>
<p>Signed in as <strong>{{.Name}}</strong>{{with .Email}} ({{.}}){{end}}, role {{.Role}}.</p>
{{if .ProxyPrefix}}<p><a href="{{.ProxyPrefix}}/tenders?descending=1&amp;limit=20">Latest tenders</a></p>{{end}}
</main>
</body>
</html>
`))

// DashboardHandler renders the signed-in landing page behind the guard.
type DashboardHandler struct {
	// ProxyPrefix links to the procurement proxy when it is mounted.
	ProxyPrefix string
}

func (h DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if !IsBrowserRequest(r) {
		WriteJSON(w, http.StatusOK, map[string]any{"user": user})
		return
	}

	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.ID
	}
	data := struct {
		Name, Email, Role, ProxyPrefix string
	}{Name: name, Email: user.Email, Role: string(user.Role), ProxyPrefix: h.ProxyPrefix}

	var buf bytes.Buffer
	if err := dashboardPage.Execute(&buf, data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		return
	}
}
