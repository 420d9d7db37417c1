package entity

// AnonymousUserID identifica operaciones sin usuario autenticado.
const AnonymousUserID = "unknown"

// Actor identidad de quien opera. Se resuelve una sola vez en el borde HTTP
// y viaja explícitamente hasta el núcleo.
type Actor struct {
	UserID        string
	Email         string
	Role          string
	SourceAddress string
}

// Anonymous construye el actor para peticiones sin identidad.
func Anonymous(sourceAddress string) Actor {
	return Actor{UserID: AnonymousUserID, SourceAddress: sourceAddress}
}

// HasRole indica si el actor tiene alguno de los roles dados.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
