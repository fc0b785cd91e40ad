package activity

import (
	"fmt"
	"strings"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

// Namer traduce claves de local a nombres legibles.
type Namer interface {
	DisplayName(key string) string
}

// FormatMessage mensaje legible (pt-BR) de un registro, como se muestra en la lista de registros.
func FormatMessage(e *entity.ActivityEntry, names Namer) string {
	hora := e.DataFormatada
	if parts := strings.SplitN(e.DataFormatada, " ", 2); len(parts) == 2 {
		hora = parts[1]
	}
	origem := displayName(names, e.Origem)
	destino := ""
	if e.Destino != nil {
		destino = displayName(names, *e.Destino)
	}
	qty := quantityText(e.Quantidade)

	switch e.TipoOperacao {
	case entity.OpAdicao:
		return fmt.Sprintf("%s adicionou %s %s no %s às %s.", e.UsuarioEmail, qty, e.Item, origem, hora)
	case entity.OpRemocao:
		return fmt.Sprintf("%s removeu %s %s do %s às %s.", e.UsuarioEmail, qty, e.Item, origem, hora)
	case entity.OpTransferencia:
		return fmt.Sprintf("%s transferiu %s %s do %s para o %s às %s.", e.UsuarioEmail, qty, e.Item, origem, destino, hora)
	case entity.OpAtualizacao:
		return fmt.Sprintf("%s atualizou %s no %s às %s.", e.UsuarioEmail, e.Item, origem, hora)
	case entity.OpAdicaoLeva:
		return fmt.Sprintf("%s importou %s itens (%s) no %s às %s.", e.UsuarioEmail, qty, e.Item, origem, hora)
	case entity.OpLogin:
		return fmt.Sprintf("%s fez login no sistema às %s.", e.UsuarioEmail, hora)
	case entity.OpLogout:
		return fmt.Sprintf("%s saiu do sistema às %s.", e.UsuarioEmail, hora)
	}
	return fmt.Sprintf("%s realizou operação %s com %s em %s às %s.", e.UsuarioEmail, e.TipoOperacao, e.Item, origem, hora)
}

func displayName(names Namer, key string) string {
	if names == nil || key == "" {
		return key
	}
	return names.DisplayName(key)
}

func quantityText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
