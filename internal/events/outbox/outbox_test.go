package outbox_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	. "github.com/grace-umanah/bit-holdings/internal/events/outbox"
	"github.com/grace-umanah/bit-holdings/internal/events/outbox/mocks"
)

var errBroker = errors.New("broker unavailable")

// =============================================================================
// Outbox Worker Test Suite
// =============================================================================
// Justification for unit tests: the worker is the delivery bridge between the
// committed event log and the stream. Tests verify batch draining, ordering of
// publish vs settle, and that publish failures leave unsettled rows behind for
// the next claim.

type OutboxWorkerSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockSource   *mocks.MockSource
	mockProducer *mocks.MockProducer
	worker       *Worker
}

func TestOutboxWorkerSuite(t *testing.T) {
	suite.Run(t, new(OutboxWorkerSuite))
}

func (s *OutboxWorkerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockSource = mocks.NewMockSource(s.ctrl)
	s.mockProducer = mocks.NewMockProducer(s.ctrl)
	s.worker = NewWorker(s.mockSource, s.mockProducer, WithBatchSize(2))
}

func (s *OutboxWorkerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OutboxWorkerSuite) TestDrain() {
	ctx := context.Background()

	s.Run("empty outbox publishes nothing", func() {
		s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(nil, nil)

		s.NoError(s.worker.Drain(ctx))
	})

	s.Run("publishes every claimed row then settles the batch", func() {
		rows := []Row{
			{ID: "a", TxID: 1, AssetID: 7, Payload: []byte(`{"tx_id":1}`)},
		}
		s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(rows, nil)
		s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-7", rows[0].Payload).Return(nil)
		s.mockSource.EXPECT().MarkPublished(gomock.Any(), []string{"a"}).Return(nil)

		s.NoError(s.worker.Drain(ctx))
	})

	s.Run("keeps claiming until the backlog is shorter than one batch", func() {
		first := []Row{
			{ID: "a", TxID: 1, AssetID: 1, Payload: []byte("p1")},
			{ID: "b", TxID: 2, AssetID: 1, Payload: []byte("p2")},
		}
		second := []Row{
			{ID: "c", TxID: 3, AssetID: 2, Payload: []byte("p3")},
		}
		gomock.InOrder(
			s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(first, nil),
			s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-1", first[0].Payload).Return(nil),
			s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-1", first[1].Payload).Return(nil),
			s.mockSource.EXPECT().MarkPublished(gomock.Any(), []string{"a", "b"}).Return(nil),
			s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(second, nil),
			s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-2", second[0].Payload).Return(nil),
			s.mockSource.EXPECT().MarkPublished(gomock.Any(), []string{"c"}).Return(nil),
		)

		s.NoError(s.worker.Drain(ctx))
	})

	s.Run("publish failure settles the delivered prefix and surfaces the error", func() {
		rows := []Row{
			{ID: "a", TxID: 1, AssetID: 1, Payload: []byte("p1")},
			{ID: "b", TxID: 2, AssetID: 1, Payload: []byte("p2")},
		}
		gomock.InOrder(
			s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(rows, nil),
			s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-1", rows[0].Payload).Return(nil),
			s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-1", rows[1].Payload).Return(errBroker),
			s.mockSource.EXPECT().MarkPublished(gomock.Any(), []string{"a"}).Return(nil),
		)

		s.ErrorIs(s.worker.Drain(ctx), errBroker)
	})

	s.Run("publish failure on the first row settles nothing", func() {
		rows := []Row{
			{ID: "a", TxID: 1, AssetID: 1, Payload: []byte("p1")},
		}
		s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(rows, nil)
		s.mockProducer.EXPECT().Publish(gomock.Any(), "asset-1", rows[0].Payload).Return(errBroker)

		s.ErrorIs(s.worker.Drain(ctx), errBroker)
	})

	s.Run("claim failure stops the drain", func() {
		s.mockSource.EXPECT().Claim(gomock.Any(), 2).Return(nil, errBroker)

		s.ErrorIs(s.worker.Drain(ctx), errBroker)
	})
}

func (s *OutboxWorkerSuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.ErrorIs(s.worker.Run(ctx), context.Canceled)
}
