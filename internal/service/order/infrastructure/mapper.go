package infrastructure

import (
	"encoding/json"

	"github.com/pkg/errors"

	"printexpress/internal/service/order/domain"
)

func toDomainOrder(m *OrderModel) (*domain.Order, error) {
	order := &domain.Order{
		ID:            m.ID,
		UserID:        m.UserID,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
		Status:        domain.Status(m.Status),
		Channel:       domain.FundingChannel(m.Channel),
		PaymentState:  domain.PaymentState(m.PaymentState),
		PaymentRef:    m.PaymentRef,
		PaymentURL:    m.PaymentURL,
		AmountPaid:    m.AmountPaid,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(m.Spec), &order.Spec); err != nil {
		return nil, errors.Wrapf(err, "order %s: corrupt spec document", m.ID)
	}
	if err := json.Unmarshal([]byte(m.Breakdown), &order.Breakdown); err != nil {
		return nil, errors.Wrapf(err, "order %s: corrupt breakdown document", m.ID)
	}
	if m.Tracking != "" {
		if err := json.Unmarshal([]byte(m.Tracking), &order.Tracking); err != nil {
			return nil, errors.Wrapf(err, "order %s: corrupt tracking document", m.ID)
		}
	}
	return order, nil
}

func fromDomainOrder(d *domain.Order) (*OrderModel, error) {
	spec, err := json.Marshal(d.Spec)
	if err != nil {
		return nil, errors.Wrap(err, "marshal spec")
	}
	breakdown, err := json.Marshal(d.Breakdown)
	if err != nil {
		return nil, errors.Wrap(err, "marshal breakdown")
	}
	tracking, err := json.Marshal(d.Tracking)
	if err != nil {
		return nil, errors.Wrap(err, "marshal tracking")
	}
	return &OrderModel{
		ID:            d.ID,
		UserID:        d.UserID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		Spec:          string(spec),
		Breakdown:     string(breakdown),
		Tracking:      string(tracking),
		Status:        string(d.Status),
		Channel:       string(d.Channel),
		PaymentState:  string(d.PaymentState),
		PaymentRef:    d.PaymentRef,
		PaymentURL:    d.PaymentURL,
		AmountPaid:    d.AmountPaid,
	}, nil
}
