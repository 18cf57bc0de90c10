package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"walletgate/internal/auth/models"
	dErrors "walletgate/pkg/domain-errors"
)

var tracer = otel.Tracer("walletgate/internal/auth/service")

type tokenEndpointResponse struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type tokenEndpointError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// exchangeCode swaps the authorization code for tokens at the token
// endpoint, proving possession of the verifier generated at BeginLogin.
// ExpiresAt is derived from the receipt time, never trusted from input.
func (s *Service) exchangeCode(ctx context.Context, code, verifier string) (*models.TokenSet, error) {
	ctx, span := tracer.Start(ctx, "oauth2.token_exchange",
		trace.WithAttributes(attribute.String("oauth2.authority", s.cfg.AuthorityURL)))
	defer span.End()

	form := url.Values{}
	form.Set("client_id", s.cfg.ClientID)
	form.Set("scope", s.cfg.ScopeParam())
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)
	form.Set("grant_type", "authorization_code")
	form.Set("code_verifier", verifier)

	endpoint := s.cfg.AuthorityURL + "/oauth2/v2.0/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := s.http.Do(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		if s.metrics != nil {
			s.metrics.ObserveExchange("network_error", elapsed)
		}
		exchErr := &TokenExchangeError{cause: err}
		return nil, dErrors.Wrap(exchErr, dErrors.CodeInternal, "token endpoint unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var serverErr tokenEndpointError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&serverErr); decodeErr != nil {
			serverErr.Error = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		exchErr := &TokenExchangeError{
			Code:        serverErr.Error,
			Description: serverErr.ErrorDescription,
		}
		span.SetStatus(codes.Error, exchErr.Error())
		if s.metrics != nil {
			s.metrics.ObserveExchange("rejected", elapsed)
		}
		return nil, dErrors.Wrap(exchErr, dErrors.CodeUnauthorized, "token endpoint rejected exchange")
	}

	var body tokenEndpointResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if s.metrics != nil {
			s.metrics.ObserveExchange("malformed", elapsed)
		}
		exchErr := &TokenExchangeError{cause: err}
		return nil, dErrors.Wrap(exchErr, dErrors.CodeInternal, "malformed token response")
	}
	if body.AccessToken == "" {
		if s.metrics != nil {
			s.metrics.ObserveExchange("malformed", elapsed)
		}
		exchErr := &TokenExchangeError{Code: "invalid_response", Description: "missing access_token"}
		return nil, dErrors.Wrap(exchErr, dErrors.CodeInternal, "malformed token response")
	}

	if s.metrics != nil {
		s.metrics.ObserveExchange("success", elapsed)
	}
	span.SetAttributes(attribute.Int64("oauth2.expires_in", body.ExpiresIn))

	now := s.clock.Now()
	return &models.TokenSet{
		AccessToken: body.AccessToken,
		IDToken:     body.IDToken,
		ExpiresIn:   body.ExpiresIn,
		ExpiresAt:   now.Add(time.Duration(body.ExpiresIn) * time.Second),
		Provenance:  models.ProvenancePKCE,
	}, nil
}
