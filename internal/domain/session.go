package domain

// Session identifica a quien invoca un caso de uso. El handler HTTP la construye
// a partir de los claims del JWT.
type Session struct {
	UserID string
	Role   string
}

// Require devuelve ErrUnauthorized si la sesión no tiene usuario.
func (s Session) Require() error {
	if s.UserID == "" {
		return ErrUnauthorized
	}
	return nil
}

// RequireRole exige sesión válida y uno de los roles indicados.
func (s Session) RequireRole(roles ...string) error {
	if err := s.Require(); err != nil {
		return err
	}
	for _, r := range roles {
		if s.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
