package ledger

import (
	"context"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("backoffice/ledger")

const latestTransactions = 10

// TransactionLister is the read side of the transaction repository.
type TransactionLister interface {
	List(ctx context.Context, organizationID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error)
}

type Service struct {
	transactions TransactionLister
	logger       *logrus.Logger
}

func NewService(transactions TransactionLister) *Service {
	return &Service{transactions: transactions, logger: config.GetLogger()}
}

// Dashboard is the payload of the organization home page.
type Dashboard struct {
	Totals  TotalsView            `json:"totals"`
	Monthly []MonthlyPoint        `json:"monthly"`
	Latest  []*models.Transaction `json:"latest"`
}

// Totals aggregates every transaction of the organization. Fetch failures are logged and
// yield all-zero totals.
func (s *Service) Totals(ctx context.Context, organizationID uuid.UUID, view View) TotalsView {
	txs := s.fetch(ctx, "Totals", organizationID, models.TransactionFilter{})
	return Aggregate(txs).Project(view)
}

// Dashboard aggregates the transactions between from and to. Nil bounds are open.
func (s *Service) Dashboard(ctx context.Context, organizationID uuid.UUID, view View, from, to *time.Time) *Dashboard {
	txs := s.fetch(ctx, "Dashboard", organizationID, models.TransactionFilter{From: from, To: to})

	visible := view.Filter(txs)
	latest := visible
	if len(latest) > latestTransactions {
		latest = latest[:latestTransactions]
	}
	return &Dashboard{
		Totals:  Aggregate(txs).Project(view),
		Monthly: Monthly(txs, view),
		Latest:  latest,
	}
}

func (s *Service) fetch(ctx context.Context, funcName string, organizationID uuid.UUID, filter models.TransactionFilter) []*models.Transaction {
	ctx, span := tracer.Start(ctx, "ledger."+funcName)
	defer span.End()
	span.SetAttributes(attribute.String("organization.id", organizationID.String()))

	txs, err := s.transactions.List(ctx, organizationID, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		config.LogError(s.logger, "ledger", funcName, "fetch transactions, returning zero totals", organizationID.String(), err)
		return nil
	}
	span.SetAttributes(attribute.Int("ledger.rows", len(txs)))
	return txs
}
