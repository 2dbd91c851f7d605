package ui

import (
	"strconv"
	"time"

	"ammonit/internal/model"
	"ammonit/internal/pager"
	"ammonit/internal/session"
)

const dateLayout = "02/01/2006 15:04"

func yesNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// UserColumns marks the signed-in user's row when sess knows who that is.
func UserColumns(sess *session.Context) []pager.Column[model.User] {
	return []pager.Column[model.User]{
		{Header: "Nombre", Width: 28, Render: func(u model.User) string {
			name := orDash(u.FullName)
			if sess.IsCurrent(u.ID) {
				name += " (tú)"
			}
			return name
		}},
		{Header: "Email", Width: 32, Render: func(u model.User) string { return u.Email }},
		{Header: "Rol", Width: 10, Render: func(u model.User) string {
			if u.IsSuperuser {
				return "Superuser"
			}
			return "Usuario"
		}},
		{Header: "Estado", Width: 10, Render: func(u model.User) string {
			if u.IsActive {
				return "Activo"
			}
			return "Inactivo"
		}},
	}
}

func ClientColumns() []pager.Column[model.Client] {
	return []pager.Column[model.Client]{
		{Header: "Nombre", Width: 30, Render: func(c model.Client) string { return c.Name }},
		{Header: "Clasificador", Width: 30, Render: func(c model.Client) string { return orDash(c.Clasifier) }},
	}
}

func OrderColumns() []pager.Column[model.Order] {
	return []pager.Column[model.Order]{
		{Header: "Fecha", Width: 18, Render: func(o model.Order) string { return formatDate(o.DateProcessed) }},
		{Header: "Cliente", Render: func(o model.Order) string { return orDash(o.ClientName) }},
		{Header: "Documento de Pedido", Width: 32, Render: func(o model.Order) string { return orDash(o.BaseDocumentName) }},
		{Header: "Aprobado", Width: 10, Render: func(o model.Order) string {
			if o.IsApproved == nil {
				return "Pendiente"
			}
			return yesNo(*o.IsApproved)
		}},
	}
}

func EmailColumns() []pager.Column[model.Email] {
	return []pager.Column[model.Email]{
		{Header: "Email", Width: 32, Render: func(e model.Email) string { return e.Email }},
		{Header: "Estado", Width: 14, Render: func(e model.Email) string {
			if e.IsConnected {
				return "Conectado"
			}
			return "No conectado"
		}},
		{Header: "Filtro", Render: func(e model.Email) string { return orDash(e.Filter) }},
		{Header: "Habilitado", Width: 10, Render: func(e model.Email) string { return yesNo(e.IsActive) }},
	}
}

func PromptColumns() []pager.Column[model.Prompt] {
	return []pager.Column[model.Prompt]{
		{Header: "Consulta", Render: func(p model.Prompt) string { return orDash(p.Query) }},
		{Header: "Servicio", Width: 12, Render: func(p model.Prompt) string { return orDash(p.Service) }},
		{Header: "Modelo", Render: func(p model.Prompt) string { return orDash(p.Model) }},
		{Header: "Versión", Width: 8, Render: func(p model.Prompt) string { return strconv.Itoa(p.Version) }},
		{Header: "Creado", Width: 18, Render: func(p model.Prompt) string { return formatDate(&p.CreatedAt) }},
	}
}
