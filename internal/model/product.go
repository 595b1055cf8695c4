package model

type Product struct {
	BaseModel
	Name        string  `db:"name" json:"name"`
	Barcode     *string `db:"barcode" json:"barcode"` // Nullable
	Stock       int     `db:"stock" json:"stock"`
	MinStock    int     `db:"min_stock" json:"min_stock"`
	Price       float64 `db:"price" json:"price"`
	BuyPrice    float64 `db:"buy_price" json:"buy_price"`
	RemoteID    *string `db:"remote_id" json:"remote_id"` // Server-side id once pushed
	ServerStock int     `db:"server_stock" json:"server_stock"`
	Synced      bool    `db:"synced" json:"synced"`
}
