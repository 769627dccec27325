package app

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"slow_travel/internal/domain"
)

// Brand names shared by every site writing to the same subscriber list.
var brandNames = map[string]string{
	"slow-morocco":       "Slow Morocco",
	"slow-namibia":       "Slow Namibia",
	"slow-turkiye":       "Slow Türkiye",
	"slow-tunisia":       "Slow Tunisia",
	"slow-mauritius":     "Slow Mauritius",
	"riad-di-siena":      "Riad di Siena",
	"dancing-with-lions": "Dancing with Lions",
	"slow-world":         "Slow World",
}

// BrandName maps a site id to its display name, falling back to the id itself.
func BrandName(siteID string) string {
	if n, ok := brandNames[siteID]; ok {
		return n
	}
	return siteID
}

type NewsletterResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Resubscribed bool   `json:"isResubscribe,omitempty"`
	// Internal marks failures caused by the store rather than the visitor.
	Internal bool `json:"-"`
}

const (
	msgConfigError = "Configuration error"
	msgTryAgain    = "Something went wrong. Please try again."
)

// NewsletterService manages the shared subscriber tab. Subscriptions are keyed by
// (email, brand); status changes rewrite the row in place without locking.
type NewsletterService struct {
	content *ContentService
	brand   string
	now     func() time.Time
	token   func() string
}

func NewNewsletterService(nexus *ContentService, siteID string) *NewsletterService {
	return &NewsletterService{
		content: nexus,
		brand:   BrandName(siteID),
		now:     time.Now,
		token:   unsubscribeToken,
	}
}

type subscriberRow struct {
	index int // 1-based sheet row
	sub   domain.NewsletterSubscription
}

func (s *NewsletterService) subscribers(ctx context.Context) ([]subscriberRow, error) {
	values, err := s.content.store.Values(ctx, domain.TabNewsletter)
	if err != nil {
		return nil, err
	}
	recs := toRecords(values)
	out := make([]subscriberRow, 0, len(recs))
	for i, r := range recs {
		out = append(out, subscriberRow{
			index: i + 2,
			sub: domain.NewsletterSubscription{
				Email:            strings.TrimSpace(r["email"]),
				Brand:            r["brand"],
				CreatedAt:        r["created_at"],
				Status:           domain.SubscriptionStatus(r["status"]),
				UnsubscribeToken: r["unsubscribe_token"],
				UnsubscribedAt:   r["unsubscribed_at"],
			},
		})
	}
	return out, nil
}

func subscriptionRow(sub domain.NewsletterSubscription) []string {
	return []string{
		sub.Email, sub.Brand, sub.CreatedAt, string(sub.Status), sub.UnsubscribeToken, sub.UnsubscribedAt,
	}
}

func (s *NewsletterService) failure(err error, msg string) NewsletterResult {
	if errors.Is(err, domain.ErrNotConfigured) {
		log.Error().Err(err).Msg("newsletter store not configured")
		return NewsletterResult{Message: msgConfigError, Internal: true}
	}
	log.Error().Err(err).Msg(msg)
	return NewsletterResult{Message: msgTryAgain, Internal: true}
}

// Subscribe adds email to the list for brand (the site's own brand when empty),
// or reactivates an earlier unsubscription.
func (s *NewsletterService) Subscribe(ctx context.Context, email, brand string) NewsletterResult {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return NewsletterResult{Message: "Please enter a valid email address."}
	}
	if brand == "" {
		brand = s.brand
	}

	rows, err := s.subscribers(ctx)
	if err != nil {
		return s.failure(err, "newsletter lookup failed")
	}
	for _, row := range rows {
		if !strings.EqualFold(row.sub.Email, email) || row.sub.Brand != brand {
			continue
		}
		if row.sub.Status == domain.SubscriptionActive {
			return NewsletterResult{Success: true, Message: "You're already subscribed."}
		}
		row.sub.Status = domain.SubscriptionActive
		if err := s.content.UpdateRow(ctx, domain.TabNewsletter, row.index, subscriptionRow(row.sub)); err != nil {
			return s.failure(err, "newsletter reactivation failed")
		}
		log.Info().Str("brand", brand).Msg("newsletter subscription reactivated")
		return NewsletterResult{Success: true, Message: "Welcome back.", Resubscribed: true}
	}

	sub := domain.NewsletterSubscription{
		Email:            email,
		Brand:            brand,
		CreatedAt:        s.now().UTC().Format(isoMillis),
		Status:           domain.SubscriptionActive,
		UnsubscribeToken: s.token(),
	}
	if err := s.content.AppendRecord(ctx, domain.TabNewsletter, subscriptionRow(sub)); err != nil {
		return s.failure(err, "newsletter subscribe failed")
	}
	log.Info().Str("brand", brand).Msg("newsletter subscription added")
	return NewsletterResult{Success: true, Message: "You're in."}
}

// Unsubscribe flips the subscription holding token to unsubscribed.
func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) NewsletterResult {
	token = strings.TrimSpace(token)
	if token == "" {
		return NewsletterResult{Message: "Invalid or expired link."}
	}
	rows, err := s.subscribers(ctx)
	if err != nil {
		return s.failure(err, "newsletter lookup failed")
	}
	for _, row := range rows {
		if row.sub.UnsubscribeToken != token {
			continue
		}
		if row.sub.Status == domain.SubscriptionUnsubscribed {
			return NewsletterResult{Success: true, Message: "You've already been removed."}
		}
		row.sub.Status = domain.SubscriptionUnsubscribed
		row.sub.UnsubscribedAt = s.now().UTC().Format(isoMillis)
		if err := s.content.UpdateRow(ctx, domain.TabNewsletter, row.index, subscriptionRow(row.sub)); err != nil {
			return s.failure(err, "newsletter unsubscribe failed")
		}
		return NewsletterResult{Success: true, Message: "You've been removed."}
	}
	return NewsletterResult{Message: "Invalid or expired link."}
}

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func unsubscribeToken() string {
	b := make([]byte, 32)
	size := big.NewInt(int64(len(tokenAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			panic(err)
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b)
}
