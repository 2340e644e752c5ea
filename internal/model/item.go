package model

// Item — позиция на складе. CreatedAt — Unix-миллисекунды: клиент задаёт
// её при массовой загрузке, сервер — при создании одиночной позиции.
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	CreatedAt int64  `json:"createdAt"`
}
