package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entity is implemented by every persisted record.
type Entity interface {
	TableName() string
}

// Lifecycle is implemented by records that carry an estado flag.
// Inactive rows stay in the table but are hidden from filtered queries.
type Lifecycle interface {
	IsActive() bool
	SetActive(active bool)
}

// Status flag values shared by all lifecycle records
const (
	StatusInactive int8 = 0
	StatusActive   int8 = 1
)

// StatusColumn is the column holding the lifecycle flag
const StatusColumn = "estado"

// Category groups products on the menu
type Category struct {
	ID          int16   `gorm:"column:id;primaryKey" json:"id"`
	Name        string  `gorm:"column:nombre;size:50;not null" json:"nombre"`
	Description *string `gorm:"column:descripcion;size:200" json:"descripcion,omitempty"`
}

func (Category) TableName() string { return "categorias" }

// Customer represents a person orders are placed for
type Customer struct {
	ID        int16     `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:nombre;size:100;not null" json:"nombre"`
	Surname   string    `gorm:"column:apellido;size:100;not null" json:"apellido"`
	Phone     *string   `gorm:"column:telefono;size:15" json:"telefono,omitempty"`
	Email     *string   `gorm:"column:correo;size:150;uniqueIndex:correo" json:"correo,omitempty"`
	CreatedAt time.Time `gorm:"column:fecha_creacion;autoCreateTime:false" json:"fecha_creacion"`
	UpdatedAt time.Time `gorm:"column:ultima_actualizacion;autoUpdateTime:false" json:"ultima_actualizacion"`
	Status    int8      `gorm:"column:estado;not null" json:"estado"`
	CreatedBy *int16    `gorm:"column:creado_por;index:fk_clientes_creador" json:"creado_por,omitempty"`

	Creator   *User     `gorm:"foreignKey:CreatedBy" json:"-"`
	Addresses []Address `gorm:"foreignKey:CustomerID" json:"ubicaciones,omitempty"`
}

func (Customer) TableName() string { return "clientes" }

func (c *Customer) IsActive() bool { return c.Status == StatusActive }
func (c *Customer) SetActive(active bool) { c.Status = flag(active) }

// Address is a delivery location of a customer
type Address struct {
	ID         int16    `gorm:"column:id;primaryKey" json:"id"`
	CustomerID int16    `gorm:"column:cliente_id;not null;index:fk_ubicaciones_cliente" json:"cliente_id"`
	Street     *string  `gorm:"column:direccion;size:200" json:"direccion,omitempty"`
	Reference  *string  `gorm:"column:referencia;size:200" json:"referencia,omitempty"`
	City       *string  `gorm:"column:ciudad;size:100" json:"ciudad,omitempty"`
	Latitude   *float64 `gorm:"column:latitud" json:"latitud,omitempty"`
	Longitude  *float64 `gorm:"column:longitud" json:"longitud,omitempty"`
}

func (Address) TableName() string { return "ubicaciones" }

// Product is a sellable menu item
type Product struct {
	ID         int16           `gorm:"column:id;primaryKey" json:"id"`
	Name       string          `gorm:"column:nombre;size:100;not null" json:"nombre"`
	Price      decimal.Decimal `gorm:"column:precio;type:decimal(10,2);not null" json:"precio"`
	Stock      int             `gorm:"column:stock;not null" json:"stock"`
	CategoryID int16           `gorm:"column:categoria_id;not null;index:fk_productos_categoria" json:"categoria_id"`
	CreatedAt  time.Time       `gorm:"column:fecha_creacion;autoCreateTime:false" json:"fecha_creacion"`
	UpdatedAt  time.Time       `gorm:"column:ultima_actualizacion;autoUpdateTime:false" json:"ultima_actualizacion"`
	Status     int8            `gorm:"column:estado;not null" json:"estado"`
	CreatedBy  *int16          `gorm:"column:creado_por;index:fk_productos_creador" json:"creado_por,omitempty"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"categoria,omitempty"`
	Creator  *User     `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (Product) TableName() string { return "productos" }

func (p *Product) IsActive() bool { return p.Status == StatusActive }
func (p *Product) SetActive(active bool) { p.Status = flag(active) }

// Order is a customer order taken by a user
type Order struct {
	ID              int16           `gorm:"column:id;primaryKey" json:"id"`
	CustomerID      int16           `gorm:"column:cliente_id;not null;index:fk_pedidos_cliente" json:"cliente_id"`
	UserID          int16           `gorm:"column:usuario_id;not null;index:fk_pedidos_usuario" json:"usuario_id"`
	CourierID       *int16          `gorm:"column:rider_id;index:fk_pedidos_rider" json:"rider_id,omitempty"`
	Status          int8            `gorm:"column:estado_pedido;not null" json:"estado_pedido"`
	CustomerName    string          `gorm:"column:nombre_cliente;size:100" json:"nombre_cliente"`
	CustomerSurname string          `gorm:"column:apellido_cliente;size:100" json:"apellido_cliente"`
	Total           decimal.Decimal `gorm:"column:total;type:decimal(12,2);not null" json:"total"`
	CreatedAt       time.Time       `gorm:"column:fecha_creacion;autoCreateTime:false" json:"fecha_creacion"`
	UpdatedAt       time.Time       `gorm:"column:ultima_actualizacion;autoUpdateTime:false" json:"ultima_actualizacion"`
	CreatedBy       *int16          `gorm:"column:creado_por;index:fk_pedidos_creador" json:"creado_por,omitempty"`

	Customer *Customer   `gorm:"foreignKey:CustomerID" json:"-"`
	User     *User       `gorm:"foreignKey:UserID" json:"-"`
	Courier  *Courier    `gorm:"foreignKey:CourierID" json:"-"`
	Creator  *User       `gorm:"foreignKey:CreatedBy" json:"-"`
	Lines    []OrderLine `gorm:"foreignKey:OrderID" json:"detalles,omitempty"`
	Payments []Payment   `gorm:"foreignKey:OrderID" json:"pagos,omitempty"`
}

func (Order) TableName() string { return "pedidos" }

// OrderLine is one product entry within an order, keyed by (order, product)
type OrderLine struct {
	OrderID   int16           `gorm:"column:pedido_id;primaryKey;autoIncrement:false" json:"pedido_id"`
	ProductID int16           `gorm:"column:producto_id;primaryKey;autoIncrement:false;index:fk_detalle_producto" json:"producto_id"`
	Quantity  int             `gorm:"column:cantidad;not null" json:"cantidad"`
	UnitPrice decimal.Decimal `gorm:"column:precio_unitario;type:decimal(10,2);not null" json:"precio_unitario"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:decimal(12,2);not null" json:"subtotal"`

	Product *Product `gorm:"foreignKey:ProductID" json:"producto,omitempty"`
}

func (OrderLine) TableName() string { return "detalle_pedidos" }

// Payment records money received against an order
type Payment struct {
	ID            int16           `gorm:"column:id;primaryKey" json:"id"`
	OrderID       int16           `gorm:"column:pedido_id;not null;index:fk_pagos_pedido" json:"pedido_id"`
	Method        string          `gorm:"column:metodo;size:30;not null" json:"metodo"`
	PaymentStatus *string         `gorm:"column:estado_pago;size:30" json:"estado_pago,omitempty"`
	Amount        decimal.Decimal `gorm:"column:monto;type:decimal(12,2);not null" json:"monto"`
	CreatedAt     time.Time       `gorm:"column:fecha_creacion;autoCreateTime:false" json:"fecha_creacion"`
	UpdatedAt     time.Time       `gorm:"column:ultima_actualizacion;autoUpdateTime:false" json:"ultima_actualizacion"`
	Status        int8            `gorm:"column:estado;not null" json:"estado"`
	CreatedBy     *int16          `gorm:"column:creado_por;index:fk_pagos_creador" json:"creado_por,omitempty"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (Payment) TableName() string { return "pagos" }

func (p *Payment) IsActive() bool { return p.Status == StatusActive }
func (p *Payment) SetActive(active bool) { p.Status = flag(active) }

// Courier delivers orders
type Courier struct {
	ID             int16     `gorm:"column:id;primaryKey" json:"id"`
	Name           string    `gorm:"column:nombre;size:50;not null" json:"nombre"`
	Surname        string    `gorm:"column:apellido;size:50;not null" json:"apellido"`
	Phone          *string   `gorm:"column:telefono;size:15" json:"telefono,omitempty"`
	DeliveryStatus *string   `gorm:"column:estado_entrega;size:30" json:"estado_entrega,omitempty"`
	VehicleType    *string   `gorm:"column:tipo;size:30" json:"tipo,omitempty"`
	CreatedAt      time.Time `gorm:"column:fecha_creacion;autoCreateTime:false" json:"fecha_creacion"`
	UpdatedAt      time.Time `gorm:"column:ultima_actualizacion;autoUpdateTime:false" json:"ultima_actualizacion"`
	Status         int8      `gorm:"column:estado;not null" json:"estado"`
	CreatedBy      *int16    `gorm:"column:creado_por;index:fk_repartidores_creador" json:"creado_por,omitempty"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (Courier) TableName() string { return "repartidores" }

func (c *Courier) IsActive() bool { return c.Status == StatusActive }
func (c *Courier) SetActive(active bool) { c.Status = flag(active) }

// User is a back-office operator
type User struct {
	ID           int16     `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:nombre;size:50;not null" json:"nombre"`
	Surname      string    `gorm:"column:apellido;size:50;not null" json:"apellido"`
	Login        string    `gorm:"column:usuario;size:50;not null;uniqueIndex:usuario" json:"usuario"`
	PasswordHash string    `gorm:"column:password;size:60;not null" json:"-"`
	Phone        *string   `gorm:"column:telefono;size:15" json:"telefono,omitempty"`
	Role         string    `gorm:"column:rol;size:30;not null" json:"rol"`
	CreatedAt    time.Time `gorm:"column:fecha_creacion;autoCreateTime:false" json:"fecha_creacion"`
	UpdatedAt    time.Time `gorm:"column:ultima_actualizacion;autoUpdateTime:false" json:"ultima_actualizacion"`
	Status       int8      `gorm:"column:estado;not null" json:"estado"`
	CreatedBy    *int16    `gorm:"column:creado_por;index:fk_usuarios_creador" json:"creado_por,omitempty"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (User) TableName() string { return "usuarios" }

func (u *User) IsActive() bool { return u.Status == StatusActive }
func (u *User) SetActive(active bool) { u.Status = flag(active) }

// Order status codes stored in estado_pedido
const (
	OrderStatusCancelled int8 = -1
	OrderStatusReceived  int8 = 0
	OrderStatusSent      int8 = 1
	OrderStatusCreated   int8 = 2
)

// ValidOrderStatus reports whether s is a known order status code
func ValidOrderStatus(s int8) bool {
	switch s {
	case OrderStatusCancelled, OrderStatusReceived, OrderStatusSent, OrderStatusCreated:
		return true
	}
	return false
}

// OrderStatusName returns the label used in logs and metrics
func OrderStatusName(s int8) string {
	switch s {
	case OrderStatusCancelled:
		return "cancelled"
	case OrderStatusReceived:
		return "received"
	case OrderStatusSent:
		return "sent"
	case OrderStatusCreated:
		return "created"
	}
	return "unknown"
}

// ProcessedEvent for idempotency
type ProcessedEvent struct {
	EventID     string    `gorm:"column:event_id;primaryKey;size:64" db:"event_id"`
	EventType   string    `gorm:"column:event_type;size:50;not null" db:"event_type"`
	ProcessedAt time.Time `gorm:"column:processed_at;not null" db:"processed_at"`
}

func (ProcessedEvent) TableName() string { return "processed_events" }

func flag(active bool) int8 {
	if active {
		return StatusActive
	}
	return StatusInactive
}
