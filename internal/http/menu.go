package http

// Menu names the dropdown that is currently open in the filter bar. Holding
// a single value means opening one menu closes any other.
type Menu string

const (
	MenuNone     Menu = ""
	MenuType     Menu = "type"
	MenuPeriod   Menu = "period"
	MenuCategory Menu = "category"
	MenuPageSize Menu = "page-size"
)

// ParseMenu maps unknown names to MenuNone.
func ParseMenu(s string) Menu {
	switch m := Menu(s); m {
	case MenuType, MenuPeriod, MenuCategory, MenuPageSize:
		return m
	default:
		return MenuNone
	}
}

// Toggle returns the state after clicking the button of menu m: m opens,
// or closes when it was already open.
func (current Menu) Toggle(m Menu) Menu {
	if current == m {
		return MenuNone
	}
	return m
}

func (current Menu) IsOpen(m Menu) bool {
	return m != MenuNone && current == m
}
