// Package navigation decides which top-level sections a user sees.
package navigation

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/mindfulu-platform/internal/identity"
)

// Item is one entry in the top navigation bar.
type Item struct {
	Name string `json:"name"`
	Href string `json:"href"`
	Icon string `json:"icon"`
}

var studentItems = []Item{
	{Name: "Home", Href: "/", Icon: "home"},
	{Name: "AI Support", Href: "/chat", Icon: "message-circle"},
	{Name: "Resources", Href: "/resources", Icon: "book-open"},
	{Name: "Community", Href: "/community", Icon: "users"},
	{Name: "Book Session", Href: "/booking", Icon: "calendar"},
}

var adminItems = []Item{
	{Name: "Dashboard", Href: "/admin", Icon: "layout-dashboard"},
	{Name: "Users", Href: "/admin/users", Icon: "users"},
	{Name: "Resources", Href: "/admin/resources", Icon: "book-open"},
	{Name: "Community", Href: "/admin/community", Icon: "message-square"},
}

// Items returns the navigation for role. Anything other than admin gets the
// student view.
func Items(role identity.Role) []Item {
	if role == identity.RoleAdmin {
		return append([]Item(nil), adminItems...)
	}
	return append([]Item(nil), studentItems...)
}

// Handler serves GET /navigation for the request identity.
func Handler(w http.ResponseWriter, r *http.Request) {
	role := identity.RoleStudent
	if id, ok := identity.FromContext(r.Context()); ok {
		role = id.Role
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"role":  role,
		"items": Items(role),
	})
}
