package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"venue-rank-go/internal/fetcher"
	"venue-rank-go/internal/llm"
	"venue-rank-go/internal/model"
)

// Kind 未解析原因分类
type Kind string

const (
	BelowThreshold      Kind = "below_threshold"
	ProviderUnavailable Kind = "provider_unavailable"
	ParseFailure        Kind = "parse_failure"
	NoMatch             Kind = "no_match"
)

// 细分原因（仅用于诊断）
const (
	ReasonNetwork      = "network"
	ReasonStatus       = "status"
	ReasonAuth         = "auth"
	ReasonQuota        = "quota"
	ReasonBlocked      = "blocked"
	ReasonCanceled     = "canceled"
	ReasonPanic        = "panic"
	ReasonEmptyResult  = "empty_result"
	ReasonMissingField = "missing_field"
	ReasonEmptyCatalog = "empty_catalog"
	ReasonNoNumber     = "no_number"
	ReasonInvalidValue = "invalid_value"
)

// Unresolved 策略未能给出结果；协调器统一处理，原因只进诊断信息
type Unresolved struct {
	Strategy  model.Source
	Kind      Kind
	Reason    string
	Candidate string // BelowThreshold 时的最佳候选
	Score     int
	Err       error
}

func (u *Unresolved) Error() string {
	msg := fmt.Sprintf("%s unresolved: %s", u.Strategy, u.Kind)
	if u.Reason != "" {
		msg += " (" + u.Reason + ")"
	}
	if u.Candidate != "" {
		msg += fmt.Sprintf(" best=%q score=%d", u.Candidate, u.Score)
	}
	if u.Err != nil {
		msg += ": " + u.Err.Error()
	}
	return msg
}

func (u *Unresolved) Unwrap() error { return u.Err }

// Attempt 转成诊断记录
func (u *Unresolved) Attempt() model.Attempt {
	a := model.Attempt{
		Strategy:  u.Strategy,
		Kind:      string(u.Kind),
		Reason:    u.Reason,
		Candidate: u.Candidate,
		Score:     u.Score,
	}
	if u.Err != nil {
		a.Error = u.Err.Error()
	}
	return a
}

// providerFailure 把外部调用错误归类为 ProviderUnavailable
func providerFailure(src model.Source, err error) *Unresolved {
	return &Unresolved{
		Strategy: src,
		Kind:     ProviderUnavailable,
		Reason:   failureReason(err),
		Err:      err,
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, llm.ErrAuth):
		return ReasonAuth
	case errors.Is(err, llm.ErrQuota):
		return ReasonQuota
	case errors.Is(err, fetcher.ErrBlocked):
		return ReasonBlocked
	}

	var se *fetcher.StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ReasonAuth
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return ReasonQuota
		}
		return ReasonStatus
	}
	return ReasonNetwork
}
