package models

type SafetyShelter struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
	Address     string      `json:"address"`
	Capacity    int         `json:"capacity"`
	Available   bool        `json:"available"`
}
