package model

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
	RoomCleaning    RoomStatus = "cleaning"
	RoomReserved    RoomStatus = "reserved"
)

type Room struct {
	ID       int64      `json:"id"`
	Number   string     `json:"number"`
	Floor    int        `json:"floor"`
	Type     string     `json:"type"`
	Status   RoomStatus `json:"status"`
	Price    float64    `json:"price"`
	Features []string   `json:"features"`
}
