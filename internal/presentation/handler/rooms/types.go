package rooms

type statsResponse struct {
	ActiveRooms int `json:"activeRooms"`
}
