package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-vet/internal/domain/entity"
)

func entry() *entity.ActivityEntry {
	dest := "vet"
	return &entity.ActivityEntry{
		ID:            "reg-1",
		UsuarioEmail:  "ana@clinica.vet",
		TipoOperacao:  entity.OpTransferencia,
		Item:          "Seringa 10ml",
		Origem:        "principal",
		Destino:       &dest,
		Quantidade:    int64(40),
		Detalhes:      map[string]any{"valorUnitario": "2.50"},
		DataFormatada: "01/06/2025 12:00:00",
	}
}

func TestPublishActivity(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewConfig())
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev ActivityEvent
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.ID != "reg-1" || ev.TipoOperacao != "transferencia" || ev.Destino == nil || *ev.Destino != "vet" {
			return errors.New("evento inesperado")
		}
		return nil
	})

	p := NewActivityPublisherWithProducer(producer, "estoque.registros", nil)
	require.NoError(t, p.PublishActivity(context.Background(), entry()))
	require.NoError(t, p.Close())
}

func TestPublishActivity_FalloDelBroker(t *testing.T) {
	producer := mocks.NewSyncProducer(t, NewConfig())
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewActivityPublisherWithProducer(producer, "estoque.registros", nil)
	err := p.PublishActivity(context.Background(), entry())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.Equal(t, 3, cfg.Producer.Retry.Max)
}
