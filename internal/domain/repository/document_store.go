package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
)

// OrderByName único orden soportado por la consulta de productos (nombre ascendente).
const OrderByName = "name"

// ProductQuery consulta sobre la colección de productos: owner == OwnerID, orden por OrderBy asc.
type ProductQuery struct {
	OwnerID string
	OrderBy string
}

// Document documento de la colección tal como lo entrega un snapshot: id + campos.
type Document struct {
	ID   string
	Data entity.ProductData
}

// SnapshotFunc recibe el listado completo de documentos que cumplen la consulta.
type SnapshotFunc func(docs []Document)

// ErrorFunc recibe fallas de la suscripción (permisos, red...).
type ErrorFunc func(err error)

// Unsubscribe cierra una suscripción. Debe ser idempotente y no esperar a que termine un
// callback en curso (el loop que la llama puede ser quien lo tiene bloqueado).
type Unsubscribe func()

// DocumentStore define el puerto del store remoto de documentos con suscripción en vivo (DIP).
//
// Subscribe entrega un snapshot inicial y uno nuevo por cada cambio, en orden, desde una
// única goroutine por suscripción. Nunca invoca los callbacks dentro de la llamada a Subscribe.
// Update y Delete solo tocan documentos de ownerID: domain.ErrNotFound si el id no existe,
// domain.ErrForbidden si pertenece a otro owner.
type DocumentStore interface {
	Subscribe(ctx context.Context, q ProductQuery, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error)
	Add(ctx context.Context, data entity.ProductData) (string, error)
	Update(ctx context.Context, ownerID, id string, fields entity.ProductFields, updatedAt time.Time) error
	Delete(ctx context.Context, ownerID, id string) error
}
