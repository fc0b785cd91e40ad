package http

import (
	"github.com/jhoicas/estoque-vet/internal/application/activity"
	"github.com/jhoicas/estoque-vet/internal/application/dto"
	"github.com/jhoicas/estoque-vet/internal/application/inventory"
	"github.com/jhoicas/estoque-vet/internal/domain"
	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

const validadeLayout = "2006-01-02"

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:             p.ID,
		Nome:           p.Nome,
		Categoria:      string(p.Categoria),
		TipoQuantidade: string(p.TipoQuantidade),
		Quantidade:     p.Quantidade,
		Valor:          p.Valor,
		ValorTotal:     p.TotalValue(),
		Fornecedor:     p.Fornecedor,
		Lote:           p.Lote,
		UserID:         p.UserID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		TransferidoEm:  p.TransferredAt,
	}
	if p.Validade != nil {
		v := p.Validade.Format(validadeLayout)
		out.Validade = &v
	}
	return out
}

func toProductList(items []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, *toProductResponse(p))
	}
	return out
}

// toProductInput convierte el body; una validade no vacía e ilegible es un error de validación.
func toProductInput(in dto.ProductRequest) (inventory.ProductInput, error) {
	pi := inventory.ProductInput{
		Nome:           in.Nome,
		Categoria:      in.Categoria,
		TipoQuantidade: in.TipoQuantidade,
		Quantidade:     in.Quantidade,
		Valor:          in.Valor,
		Fornecedor:     in.Fornecedor,
		Lote:           in.Lote,
	}
	if in.Validade != "" {
		v := inventory.ParseDate(in.Validade)
		if v == nil {
			return pi, domain.Invalid(entity.FieldValidade, "fecha ilegible")
		}
		pi.Validade = v
	}
	return pi, nil
}

func logWarning(out activity.AppendOutcome) string {
	if out.OK() {
		return ""
	}
	return "la operación se aplicó pero no se pudo guardar el registro de actividad"
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toActivityResponse(e *entity.ActivityEntry, names activity.Namer) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:            e.ID,
		UsuarioEmail:  e.UsuarioEmail,
		TipoOperacao:  string(e.TipoOperacao),
		Item:          e.Item,
		Origem:        e.Origem,
		Destino:       e.Destino,
		Quantidade:    e.Quantidade,
		Detalhes:      e.Detalhes,
		Timestamp:     e.Timestamp,
		DataFormatada: e.DataFormatada,
		Mensagem:      activity.FormatMessage(e, names),
	}
}
