package models

// CurrentUser is the authenticated identity new works are attributed to.
type CurrentUser struct {
	Name      string `json:"name"`
	AvatarRef string `json:"avatar"`
}

func (u CurrentUser) Provider() Provider {
	return Provider{
		Name:      u.Name,
		AvatarRef: u.AvatarRef,
	}
}
