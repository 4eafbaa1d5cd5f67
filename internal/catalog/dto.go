package catalog

type MenusResponse struct {
	Menus []Menu `json:"menus"`
}

type ModulesResponse struct {
	Modules []Module `json:"modules"`
}
