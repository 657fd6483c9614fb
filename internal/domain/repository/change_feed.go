package repository

import "context"

// ChangeFeed aviso de "la colección de este owner cambió". No transporta los documentos:
// el suscriptor vuelve a consultar.
type ChangeFeed interface {
	// Listen llama a onChange por cada cambio del owner hasta que se llame a stop o ctx termine.
	// stop no espera a un onChange en curso.
	Listen(ctx context.Context, ownerID string, onChange func(), onError func(error)) (stop func(), err error)
	Publish(ctx context.Context, ownerID string) error
}
