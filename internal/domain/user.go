package domain

import "time"

// Valores por defecto del tema aplicados a perfiles sin tema guardado.
const (
	DefaultPageBackground = "bg-black"
	DefaultButtonStyle    = "solid"
	DefaultFontFamily     = "inter"
)

// Theme agrupa las opciones visuales de la página pública de un usuario.
type Theme struct {
	PageBackground string `json:"pageBackground"`
	ButtonStyle    string `json:"buttonStyle"`
	FontFamily     string `json:"fontFamily"`
}

// DefaultTheme devuelve el tema con todos los valores por defecto.
func DefaultTheme() Theme {
	return Theme{
		PageBackground: DefaultPageBackground,
		ButtonStyle:    DefaultButtonStyle,
		FontFamily:     DefaultFontFamily,
	}
}

// WithDefaults completa campos vacíos del tema con los valores por defecto.
// Cubre registros guardados antes de que existiera soporte de temas.
func (t Theme) WithDefaults() Theme {
	if t.PageBackground == "" {
		t.PageBackground = DefaultPageBackground
	}
	if t.ButtonStyle == "" {
		t.ButtonStyle = DefaultButtonStyle
	}
	if t.FontFamily == "" {
		t.FontFamily = DefaultFontFamily
	}
	return t
}

// Link es una entrada de la lista pública de enlaces de un usuario.
// Pertenece exactamente a un usuario y vive embebido en su documento.
type Link struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Icon  string `json:"icon,omitempty"`
}

// User es el agregado identidad + perfil. Los enlaces se guardan embebidos
// y en orden de creación.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	Theme        Theme     `json:"theme"`
	Links        []Link    `json:"links"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicProfile es la vista pública de un perfil.
type PublicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Theme    Theme  `json:"theme"`
	Links    []Link `json:"links"`
}

// PublicView proyecta el usuario a su perfil público con el tema completo.
func (u User) PublicView() PublicProfile {
	links := u.Links
	if links == nil {
		links = []Link{}
	}
	return PublicProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Bio:      u.Bio,
		Avatar:   u.Avatar,
		Theme:    u.Theme.WithDefaults(),
		Links:    links,
	}
}
