package governorate

type Governorate struct {
	ID     int
	Name   string
	NameAr string
}

type GovernorateResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	NameAr string `json:"name_ar"`
}

func (g *Governorate) ToResponse() GovernorateResponse {
	return GovernorateResponse{ID: g.ID, Name: g.Name, NameAr: g.NameAr}
}
