package fixtures

import (
	"time"

	"github.com/lightera/bundokai/internal/model"
)

var (
	TestParticipant1 = model.Participant{
		ID:         1,
		Name:       "Maria Souza",
		Email:      "maria.souza@example.com",
		Department: "Produção",
		Code:       "A1B2C3D4",
	}

	TestParticipant2 = model.Participant{
		ID:         2,
		Name:       "João Pereira",
		Email:      "joao.pereira@example.com",
		Department: "Logística",
		Code:       "E5F6A7B8",
	}

	TestParticipantNoDepartment = model.Participant{
		ID:    3,
		Name:  "Ana Lima",
		Email: "ana.lima@example.com",
		Code:  "C9D0E1F2",
	}
)

func NewTestParticipant(id int64, name, email, code string) *model.Participant {
	return &model.Participant{
		ID:        id,
		Name:      name,
		Email:     email,
		Code:      code,
		CreatedAt: time.Now(),
	}
}

func NewRegisterRequest(name, email, department string, dependents ...model.DependentInput) model.RegisterRequest {
	return model.RegisterRequest{
		Name:       name,
		Email:      email,
		Department: department,
		Dependents: dependents,
	}
}

func NewTestItem(name, category string, stock int) *model.DeliveryItem {
	return &model.DeliveryItem{
		Name:         name,
		Category:     category,
		InitialStock: stock,
		CurrentStock: stock,
	}
}

func NewDeliveryRequest(participantID, itemID int64, quantity int) model.RecordDeliveryRequest {
	return model.RecordDeliveryRequest{
		ParticipantID: participantID,
		ItemID:        itemID,
		Quantity:      quantity,
		Operator:      "fixture-operator",
	}
}

var (
	ValidCodes = []string{
		"A1B2C3D4",
		"E5F6A7B8",
		"C9D0E1F2",
		"0F1E2D3C",
	}

	InvalidCodes = []string{
		"",
		"short",
		"way-too-long-for-a-code",
		"        ",
	}

	DependentSets = map[string][]model.DependentInput{
		"single": {
			{Name: "Pedro", Age: 7},
		},
		"full": {
			{Name: "Pedro", Age: 7},
			{Name: "Clara", Age: 4},
			{Name: "Lucas", Age: 10},
			{Name: "Sofia", Age: 2},
			{Name: "Rafael", Age: 12},
		},
	}
)

func RegisterRequestValid() model.RegisterRequest {
	return NewRegisterRequest("Maria Souza", "maria.souza@example.com", "Produção")
}

func RegisterRequestWithDependents() model.RegisterRequest {
	return NewRegisterRequest("João Pereira", "joao.pereira@example.com", "Logística", DependentSets["single"]...)
}

func RegisterRequestMissingName() model.RegisterRequest {
	return NewRegisterRequest("", "maria.souza@example.com", "Produção")
}

func RegisterRequestMissingEmail() model.RegisterRequest {
	return NewRegisterRequest("Maria Souza", "", "Produção")
}
