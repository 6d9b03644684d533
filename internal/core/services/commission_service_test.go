package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/vet_clinic_backend/internal/apperrors"
	"github.com/SscSPs/vet_clinic_backend/internal/core/domain"
	portssvc "github.com/SscSPs/vet_clinic_backend/internal/core/ports/services"
	"github.com/SscSPs/vet_clinic_backend/internal/core/services"
	"github.com/SscSPs/vet_clinic_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CommissionServiceTestSuite struct {
	suite.Suite
	mockRepo   *MockCommissionRepository
	mockClinic *MockClinicReader
	service    portssvc.CommissionSvcFacade
	clinicID   string
}

func TestCommissionServiceSuite(t *testing.T) {
	suite.Run(t, new(CommissionServiceTestSuite))
}

func (suite *CommissionServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCommissionRepository)
	suite.mockClinic = new(MockClinicReader)
	suite.service = services.NewCommissionService(suite.mockRepo, suite.mockClinic)
	suite.clinicID = "clinic-1"
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func (suite *CommissionServiceTestSuite) TestCalculateSplit_FixedProviderValue() {
	ctx := context.Background()
	suite.mockRepo.On("FindRulesForProvider", ctx, suite.clinicID, "vet-1").Return([]domain.CommissionRule{
		{RuleID: "r1", RuleType: domain.RuleFixedProviderValue, ProviderFixedValue: decPtr("350")},
	}, nil).Once()

	split, err := suite.service.CalculateSplit(ctx, suite.clinicID, "vet-1", "surgery", dec("500"))

	suite.Require().NoError(err)
	suite.Equal("350.00", split.ProviderAmount.StringFixed(2))
	suite.Equal("150.00", split.ClinicAmount.StringFixed(2))
	suite.Equal(string(domain.RuleFixedProviderValue), split.RuleApplied)
	suite.Equal("r1", split.RuleID)
}

func (suite *CommissionServiceTestSuite) TestCalculateSplit_PercentageClinicMargin() {
	ctx := context.Background()
	suite.mockRepo.On("FindRulesForProvider", ctx, suite.clinicID, "vet-1").Return([]domain.CommissionRule{
		{RuleID: "r2", RuleType: domain.RulePercentageClinicMargin, ClinicMarginPercent: decPtr("20")},
	}, nil).Once()

	split, err := suite.service.CalculateSplit(ctx, suite.clinicID, "vet-1", "", dec("100"))

	suite.Require().NoError(err)
	suite.Equal("20.00", split.ClinicAmount.StringFixed(2))
	suite.Equal("80.00", split.ProviderAmount.StringFixed(2))
}

func (suite *CommissionServiceTestSuite) TestCalculateSplit_ServiceRuleWinsOverDefault() {
	ctx := context.Background()
	suite.mockRepo.On("FindRulesForProvider", ctx, suite.clinicID, "vet-1").Return([]domain.CommissionRule{
		{RuleID: "default", RuleType: domain.RulePercentageClinicMargin, ClinicMarginPercent: decPtr("50")},
		{RuleID: "surgery", ServiceID: strPtr("surgery"), RuleType: domain.RuleFixedProviderValue, ProviderFixedValue: decPtr("10")},
	}, nil)

	split, err := suite.service.CalculateSplit(ctx, suite.clinicID, "vet-1", "surgery", dec("100"))
	suite.Require().NoError(err)
	suite.Equal("surgery", split.RuleID)

	split, err = suite.service.CalculateSplit(ctx, suite.clinicID, "vet-1", "exam", dec("100"))
	suite.Require().NoError(err)
	suite.Equal("default", split.RuleID)
}

func (suite *CommissionServiceTestSuite) TestCalculateSplit_NoRuleKeepsEverythingWithClinic() {
	ctx := context.Background()
	suite.mockRepo.On("FindRulesForProvider", ctx, suite.clinicID, "vet-1").Return([]domain.CommissionRule{}, nil).Once()

	split, err := suite.service.CalculateSplit(ctx, suite.clinicID, "vet-1", "exam", dec("80.456"))

	suite.Require().NoError(err)
	suite.True(split.ProviderAmount.IsZero())
	suite.Equal("80.46", split.ClinicAmount.StringFixed(2))
	suite.Equal(domain.RuleAppliedDefault, split.RuleApplied)
}

func (suite *CommissionServiceTestSuite) TestCalculateSplit_NegativePriceRejected() {
	_, err := suite.service.CalculateSplit(context.Background(), suite.clinicID, "vet-1", "", dec("-1"))
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommissionServiceTestSuite) TestSimulateTransactionSplit_SumsEveryLine() {
	ctx := context.Background()
	suite.mockRepo.On("FindRulesForProvider", ctx, suite.clinicID, "vet-1").Return([]domain.CommissionRule{
		{RuleID: "r", RuleType: domain.RulePercentageClinicMargin, ClinicMarginPercent: decPtr("33.333")},
	}, nil).Once()

	sim, err := suite.service.SimulateTransactionSplit(ctx, suite.clinicID, []domain.LineItem{
		{ItemID: "1", Type: domain.ItemService, ProviderID: "vet-1", Price: dec("99.99")},
		{ItemID: "2", Type: domain.ItemProduct, ProductID: "p", Quantity: dec("1"), Price: dec("10.00")},
	})

	suite.Require().NoError(err)
	suite.Require().Len(sim.Details, 2)
	for _, d := range sim.Details[:1] {
		suite.True(d.ProviderAmount.Add(d.ClinicAmount).Equal(dec("99.99")))
	}
	suite.Equal(domain.RuleAppliedProductOrDefault, sim.Details[1].RuleApplied)
	suite.True(sim.TotalProvider.Add(sim.TotalClinic).Equal(dec("109.99")))
}

func (suite *CommissionServiceTestSuite) TestLogCommission_SkipsNonServiceLines() {
	log, err := suite.service.LogCommission(context.Background(), suite.clinicID, domain.LineItem{
		Type: domain.ItemProduct, ProductID: "p", Quantity: dec("1"), Price: dec("5"),
	}, nil)

	suite.NoError(err)
	suite.Nil(log)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveLog", mock.Anything, mock.Anything)
}

func (suite *CommissionServiceTestSuite) TestLogCommission_PersistsSnapshot() {
	ctx := context.Background()
	txnID := "txn-1"
	suite.mockRepo.On("FindRulesForProvider", ctx, suite.clinicID, "vet-1").Return([]domain.CommissionRule{
		{RuleID: "r", RuleType: domain.RuleFixedProviderValue, ProviderFixedValue: decPtr("40")},
	}, nil).Once()
	suite.mockRepo.On("SaveLog", ctx, mock.MatchedBy(func(l domain.CommissionLog) bool {
		return l.ServiceName == "Service" && l.Status == domain.CommissionPending &&
			l.ProviderAmount.Equal(dec("40")) && l.ClinicAmount.Equal(dec("60")) &&
			*l.FinancialTransactionID == txnID
	})).Return(nil).Once()

	log, err := suite.service.LogCommission(ctx, suite.clinicID, domain.LineItem{
		Type: domain.ItemService, ProviderID: "vet-1", Price: dec("100"),
	}, &txnID)

	suite.Require().NoError(err)
	suite.NotEmpty(log.LogID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CommissionServiceTestSuite) TestGetCommissionReport_GroupsByProvider() {
	ctx := context.Background()
	month := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	logs := []domain.CommissionLog{
		{LogID: "l1", ProviderID: "vet-2", ProviderAmount: dec("30"), Status: domain.CommissionPending},
		{LogID: "l2", ProviderID: "vet-1", ProviderAmount: dec("50"), Status: domain.CommissionPaid},
		{LogID: "l3", ProviderID: "vet-2", ProviderAmount: dec("20"), Status: domain.CommissionPaid},
	}
	suite.mockRepo.On("ListLogsByClinicBetween", ctx, suite.clinicID, start, end).Return(logs, nil).Once()
	suite.mockClinic.On("FindProvidersByIDs", ctx, []string{"vet-2", "vet-1"}).Return(map[string]domain.Provider{
		"vet-2": {ProviderID: "vet-2", FullName: "Dr. Ana"},
	}, nil).Once()

	report, err := suite.service.GetCommissionReport(ctx, suite.clinicID, month)

	suite.Require().NoError(err)
	suite.Equal(start, report.PeriodStart)
	suite.True(report.Summary.TotalGenerated.Equal(dec("100")))
	suite.True(report.Summary.TotalPending.Equal(dec("30")))
	suite.True(report.Summary.TotalPaid.Equal(dec("70")))
	suite.Require().Len(report.ByProvider, 2)
	suite.Equal("vet-2", report.ByProvider[0].ProviderID)
	suite.Equal("Dr. Ana", report.ByProvider[0].ProviderName)
	suite.True(report.ByProvider[0].TotalAmount.Equal(dec("50")))
	suite.Len(report.ByProvider[0].Details, 2)
	suite.Empty(report.ByProvider[1].ProviderName)
}

func (suite *CommissionServiceTestSuite) TestMarkCommissionsPaid() {
	ctx := context.Background()
	suite.mockRepo.On("MarkLogsPaid", ctx, suite.clinicID, []string{"l1", "l2"}, mock.AnythingOfType("time.Time")).Return(int64(1), nil).Once()

	updated, err := suite.service.MarkCommissionsPaid(ctx, suite.clinicID, dto.MarkCommissionsPaidRequest{LogIDs: []string{"l1", "l2"}})

	suite.Require().NoError(err)
	suite.Equal(int64(1), updated)
}

func (suite *CommissionServiceTestSuite) TestCreateRule_Validation() {
	tests := []struct {
		name string
		req  dto.CreateCommissionRuleRequest
	}{
		{"fixed without value", dto.CreateCommissionRuleRequest{ProviderID: "vet-1", RuleType: domain.RuleFixedProviderValue}},
		{"negative fixed", dto.CreateCommissionRuleRequest{ProviderID: "vet-1", RuleType: domain.RuleFixedProviderValue, ProviderFixedValue: decPtr("-1")}},
		{"margin above 100", dto.CreateCommissionRuleRequest{ProviderID: "vet-1", RuleType: domain.RulePercentageClinicMargin, ClinicMarginPercent: decPtr("101")}},
		{"unknown type", dto.CreateCommissionRuleRequest{ProviderID: "vet-1", RuleType: "TIERED"}},
	}
	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := suite.service.CreateRule(context.Background(), suite.clinicID, tc.req, "user-1")
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (suite *CommissionServiceTestSuite) TestCreateRule_ProviderOfOtherClinic() {
	ctx := context.Background()
	suite.mockClinic.On("FindProviderByID", ctx, "vet-9").Return(&domain.Provider{ProviderID: "vet-9", ClinicID: "clinic-2"}, nil).Once()

	_, err := suite.service.CreateRule(ctx, suite.clinicID, dto.CreateCommissionRuleRequest{
		ProviderID: "vet-9", RuleType: domain.RuleFixedProviderValue, ProviderFixedValue: decPtr("10"),
	}, "user-1")

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveRule", mock.Anything, mock.Anything)
}

func (suite *CommissionServiceTestSuite) TestCreateRule_EmptyServiceIsProviderDefault() {
	ctx := context.Background()
	suite.mockClinic.On("FindProviderByID", ctx, "vet-1").Return(&domain.Provider{ProviderID: "vet-1", ClinicID: suite.clinicID}, nil).Once()
	suite.mockRepo.On("SaveRule", ctx, mock.MatchedBy(func(r domain.CommissionRule) bool {
		return r.ServiceID == nil && r.ProviderFixedValue == nil && r.ClinicMarginPercent.Equal(dec("20"))
	})).Return(nil).Once()

	rule, err := suite.service.CreateRule(ctx, suite.clinicID, dto.CreateCommissionRuleRequest{
		ProviderID:          "vet-1",
		ServiceID:           strPtr(""),
		RuleType:            domain.RulePercentageClinicMargin,
		ClinicMarginPercent: decPtr("20"),
		ProviderFixedValue:  decPtr("5"),
	}, "user-1")

	suite.Require().NoError(err)
	suite.Equal("user-1", rule.CreatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}
