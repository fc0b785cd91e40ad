package entity

import (
	"time"

	"github.com/jhoicas/estoque-vet/internal/domain"
)

// OperationKind tipo de operación registrada en la bitácora.
type OperationKind string

const (
	OpAdicao        OperationKind = "adicao"
	OpRemocao       OperationKind = "remocao"
	OpAtualizacao   OperationKind = "atualizacao"
	OpTransferencia OperationKind = "transferencia"
	OpAdicaoLeva    OperationKind = "adicao_leva"
	OpLogin         OperationKind = "login"
	OpLogout        OperationKind = "logout"
)

// Campos fijos del documento de registro; los detalles libres se guardan al mismo nivel.
const (
	FieldUsuarioEmail  = "usuarioEmail"
	FieldTipoOperacao  = "tipoOperacao"
	FieldItem          = "item"
	FieldOrigem        = "origem"
	FieldDestino       = "destino"
	FieldTimestamp     = "timestamp"
	FieldDataFormatada = "dataFormatada"
)

var activityFixedFields = map[string]bool{
	FieldUsuarioEmail: true, FieldTipoOperacao: true, FieldItem: true, FieldOrigem: true,
	FieldDestino: true, FieldQuantidade: true, FieldTimestamp: true, FieldDataFormatada: true,
}

// ActivityEntry registro inmutable de una operación. Destino y Quantidade son opcionales.
type ActivityEntry struct {
	ID            string
	UsuarioEmail  string
	TipoOperacao  OperationKind
	Item          string
	Origem        string
	Destino       *string
	Quantidade    any
	Detalhes      map[string]any
	Timestamp     time.Time
	DataFormatada string
}

// Fields aplana la entrada; los detalles no pisan los campos fijos.
func (e *ActivityEntry) Fields() map[string]any {
	f := make(map[string]any, len(e.Detalhes)+8)
	for k, v := range e.Detalhes {
		if !activityFixedFields[k] {
			f[k] = v
		}
	}
	f[FieldUsuarioEmail] = e.UsuarioEmail
	f[FieldTipoOperacao] = string(e.TipoOperacao)
	f[FieldItem] = e.Item
	f[FieldOrigem] = e.Origem
	if e.Destino != nil {
		f[FieldDestino] = *e.Destino
	} else {
		f[FieldDestino] = nil
	}
	f[FieldQuantidade] = e.Quantidade
	f[FieldDataFormatada] = e.DataFormatada
	if !e.Timestamp.IsZero() {
		f[FieldTimestamp] = e.Timestamp
	}
	return f
}

// ActivityEntryFromFields reconstruye un registro leído del almacén.
// Quantidade se conserva sin tipo: la bitácora histórica admite valores no numéricos.
func ActivityEntryFromFields(id string, fields map[string]any) (*ActivityEntry, error) {
	e := &ActivityEntry{ID: id, Detalhes: map[string]any{}}
	var err error
	if e.UsuarioEmail, err = stringField(fields, FieldUsuarioEmail); err != nil {
		return nil, err
	}
	kind, err := stringField(fields, FieldTipoOperacao)
	if err != nil {
		return nil, err
	}
	e.TipoOperacao = OperationKind(kind)
	if e.Item, err = stringField(fields, FieldItem); err != nil {
		return nil, err
	}
	if e.Origem, err = stringField(fields, FieldOrigem); err != nil {
		return nil, err
	}
	destino, err := stringField(fields, FieldDestino)
	if err != nil {
		return nil, err
	}
	if destino != "" {
		e.Destino = &destino
	}
	e.Quantidade = fields[FieldQuantidade]
	if e.DataFormatada, err = stringField(fields, FieldDataFormatada); err != nil {
		return nil, err
	}
	ts, err := timeField(fields, FieldTimestamp)
	if err != nil {
		return nil, err
	}
	if ts != nil {
		e.Timestamp = *ts
	}
	for k, v := range fields {
		if !activityFixedFields[k] {
			e.Detalhes[k] = v
		}
	}
	if e.TipoOperacao == "" {
		return nil, domain.Invalid(FieldTipoOperacao, "obligatorio")
	}
	return e, nil
}
