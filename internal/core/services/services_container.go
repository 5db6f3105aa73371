package services

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/smb_ledger/internal/core/accounting"
	"github.com/SscSPs/smb_ledger/internal/core/builders"
	"github.com/SscSPs/smb_ledger/internal/core/domain"
	"github.com/SscSPs/smb_ledger/internal/core/payroll"
	portsrepo "github.com/SscSPs/smb_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/smb_ledger/internal/core/ports/services"
	"github.com/SscSPs/smb_ledger/internal/platform/config"
)

// Runtime is the wired application core. The audit recorder is exposed so the
// caller can start it and drain it on shutdown.
type Runtime struct {
	Services *portssvc.ServiceContainer
	Chart    *accounting.Chart
	Audit    *AuditRecorder
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, chart *accounting.Chart, logger *slog.Logger) (*Runtime, error) {
	converter, err := accounting.NewConverter(cfg.BaseCurrency)
	if err != nil {
		return nil, err
	}
	base := converter.Base()

	rules, err := PayrollRulesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	calc, err := payroll.NewCalculator(rules)
	if err != nil {
		return nil, err
	}

	recorder := NewAuditRecorder(repos.AuditRepo, DefaultSeverityTable(), AuditRecorderConfig{
		QueueSize:            cfg.AuditQueueSize,
		WriteTimeout:         cfg.AuditWriteTimeout,
		RetryMaxRetries:      cfg.AuditRetryMaxAttempts,
		RetryInitialInterval: cfg.AuditRetryInitialInterval,
	}, logger)

	builder := builders.New(chart, converter)
	store := NewLedgerStore(chart, repos.LedgerRepo, base)

	container := &portssvc.ServiceContainer{}
	container.Ledger = NewLedgerService(builder, store, repos.LedgerRepo, recorder, base)
	container.Reporting = NewReportingService(repos.LedgerRepo, chart, base)
	container.Account = NewAccountService(chart)
	container.Payroll = NewPayrollService(calc, repos.PayrollRepo, container.Ledger, recorder)
	container.Reconciliation = NewReconciliationService(repos.ReconciliationRepo, repos.LedgerRepo, chart, recorder, base, ReconciliationConfig{
		Tolerance:          domain.Amount(cfg.ReconToleranceMinor),
		MaxCandidates:      cfg.ReconMaxCandidates,
		DefaultBankAccount: domain.AccountCashBank,
	})
	container.Audit = NewAuditService(repos.AuditRepo)

	return &Runtime{Services: container, Chart: chart, Audit: recorder}, nil
}

// PayrollRulesFromConfig applies configured overrides to the default
// statutory rules.
func PayrollRulesFromConfig(cfg *config.Config) (payroll.Rules, error) {
	rules := payroll.DefaultRules()

	rates := []struct {
		key string
		raw string
		dst *decimal.Decimal
	}{
		{"PAYROLL_PENSION_RATE", cfg.PayrollPensionRate, &rules.PensionRate},
		{"PAYROLL_HEALTH_LEVY_RATE", cfg.PayrollHealthLevyRate, &rules.HealthLevyRate},
		{"PAYROLL_HOUSING_LEVY_RATE", cfg.PayrollHousingLevyRate, &rules.HousingLevyRate},
	}
	for _, r := range rates {
		if r.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(r.raw)
		if err != nil {
			return payroll.Rules{}, fmt.Errorf("%w: %s: %v", payroll.ErrInvalidRules, r.key, err)
		}
		*r.dst = v
	}

	amounts := []struct {
		key string
		raw string
		dst *domain.Amount
	}{
		{"PAYROLL_PERSONAL_RELIEF", cfg.PayrollPersonalRelief, &rules.PersonalRelief},
		{"PAYROLL_PENSION_CAP", cfg.PayrollPensionCap, &rules.PensionCap},
	}
	for _, a := range amounts {
		if a.raw == "" {
			continue
		}
		v, err := decimal.NewFromString(a.raw)
		if err != nil || !v.IsInteger() || v.IsNegative() {
			return payroll.Rules{}, fmt.Errorf("%w: %s must be a non-negative amount in minor units", payroll.ErrInvalidRules, a.key)
		}
		*a.dst = domain.Amount(v.IntPart())
	}

	if err := rules.Validate(); err != nil {
		return payroll.Rules{}, err
	}
	return rules, nil
}
