package usecases

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/shared"
	"github.com/sand/bot-marketplace/backend/internal/usecases/mocked"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

// MarketplaceService serves the bot catalog and membership plans and records
// purchases of both.
type MarketplaceService struct {
	logger       *slog.Logger
	bots         *repository.BotsRepository
	users        *repository.UsersRepository
	transactions ports.TransactionService
	stats        ports.StatsRecorder
	events       ports.EventLogger
	plans        []entities.SubscriptionPlan
	tonPrice     float64
	now          func() time.Time
}

func NewMarketplaceService(
	logger *slog.Logger,
	bots *repository.BotsRepository,
	users *repository.UsersRepository,
	transactions ports.TransactionService,
	stats ports.StatsRecorder,
	events ports.EventLogger,
) *MarketplaceService {
	tonPrice, _ := mocked.AssetPrice(CurrencyTON)
	return &MarketplaceService{
		logger:       logger,
		bots:         bots,
		users:        users,
		transactions: transactions,
		stats:        stats,
		events:       events,
		plans:        mocked.SubscriptionPlans(),
		tonPrice:     tonPrice,
		now:          time.Now,
	}
}

// ListBots returns the catalog, newest first.
func (s *MarketplaceService) ListBots(ctx context.Context) ([]entities.Bot, error) {
	bots, err := s.bots.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(bots, func(a, b entities.Bot) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return bots, nil
}

func (s *MarketplaceService) GetBot(ctx context.Context, id string) (entities.Bot, error) {
	return s.bots.Get(ctx, id)
}

// CreateBot adds a listing. It starts active unless a status is given.
func (s *MarketplaceService) CreateBot(ctx context.Context, bot entities.Bot) (entities.Bot, error) {
	bot.Name = strings.TrimSpace(shared.SanitizeInput(bot.Name))
	bot.Description = shared.SanitizeInput(bot.Description)
	if bot.Name == "" {
		return entities.Bot{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if bot.Price < 0 || math.IsNaN(bot.Price) {
		return entities.Bot{}, fmt.Errorf("%w: price must not be negative", ErrInvalidAmount)
	}
	if bot.Status == "" {
		bot.Status = entities.BotStatusActive
	}
	if bot.Features == nil {
		bot.Features = []string{}
	}
	if bot.Screenshots == nil {
		bot.Screenshots = []string{}
	}
	bot.CreatedAt = s.now().UTC()

	created, err := s.bots.Create(ctx, bot)
	if err != nil {
		return entities.Bot{}, err
	}

	s.logEvent(ctx, entities.LogInfo, "Bot created", map[string]any{"id": created.ID, "name": created.Name})
	return created, nil
}

func (s *MarketplaceService) UpdateBot(ctx context.Context, id string, patch entities.BotPatch) (entities.Bot, error) {
	if patch.Price != nil && (*patch.Price < 0 || math.IsNaN(*patch.Price)) {
		return entities.Bot{}, fmt.Errorf("%w: price must not be negative", ErrInvalidAmount)
	}
	if patch.Name != nil {
		*patch.Name = shared.SanitizeInput(*patch.Name)
	}
	if patch.Description != nil {
		*patch.Description = shared.SanitizeInput(*patch.Description)
	}

	updated, err := s.bots.Update(ctx, id, func(b *entities.Bot) error {
		patch.Apply(b)
		return nil
	})
	if err != nil {
		return entities.Bot{}, err
	}

	s.logEvent(ctx, entities.LogInfo, "Bot updated", map[string]any{"id": id})
	return updated, nil
}

func (s *MarketplaceService) DeleteBot(ctx context.Context, id string) error {
	if err := s.bots.Delete(ctx, id); err != nil {
		return err
	}

	s.logEvent(ctx, entities.LogWarning, "Bot deleted", map[string]any{"id": id})
	return nil
}

// priceQuote converts a price into Stars and TON. Paid items never quote below
// the minimum TON payment so they stay purchasable through TON Connect.
func (s *MarketplaceService) priceQuote(price float64) entities.Quote {
	quote := entities.Quote{
		Price: price,
		Stars: int64(math.Ceil(price * ports.StarsPerCurrencyUnit)),
	}
	if s.tonPrice > 0 && price > 0 {
		quote.TON = max(roundTo(price/s.tonPrice, 2), ports.MinTonPayment)
	}
	return quote
}

func (s *MarketplaceService) quote(bot entities.Bot) entities.Quote {
	quote := s.priceQuote(bot.Price)
	quote.BotID = bot.ID
	return quote
}

// Quote prices a bot in Telegram Stars and TON.
func (s *MarketplaceService) Quote(ctx context.Context, botID string) (entities.Quote, error) {
	bot, err := s.bots.Get(ctx, botID)
	if err != nil {
		return entities.Quote{}, err
	}
	return s.quote(bot), nil
}

// TonPaymentRequest builds the TON Connect request paying for a bot.
func (s *MarketplaceService) TonPaymentRequest(ctx context.Context, botID string) (*entities.TonConnectRequest, entities.Quote, error) {
	quote, err := s.Quote(ctx, botID)
	if err != nil {
		return nil, entities.Quote{}, err
	}
	return s.tonRequest(quote)
}

func (s *MarketplaceService) tonRequest(quote entities.Quote) (*entities.TonConnectRequest, entities.Quote, error) {
	request, err := s.transactions.CreateTonTransaction(quote.TON)
	if err != nil {
		return nil, quote, err
	}
	return request, quote, nil
}

// charge settles a payment of quote with the given method and returns the
// payment hash. ton and stars payments are settled by the client, which sends
// the provider's proof as reference: for ton that is the signed transaction
// for the request built by TonPaymentRequest. Internal payments are charged
// from the user's wallet in TON. Nothing is charged for free items.
func (s *MarketplaceService) charge(ctx context.Context, userID string, method entities.PaymentMethod, reference string, quote entities.Quote) (string, error) {
	if !method.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, method)
	}
	if quote.Price <= 0 {
		return "", nil
	}

	switch method {
	case entities.PaymentInternal:
		result, err := s.transactions.PayToAdmin(ctx, userID, quote.TON, CurrencyTON)
		if err != nil {
			return "", err
		}
		return result.Hash, nil
	default:
		reference = strings.TrimSpace(reference)
		if reference == "" {
			return "", fmt.Errorf("%w: payment reference is required for %s payments", ErrInvalidInput, method)
		}
		return reference, nil
	}
}

// Purchase records that the user bought a bot after charging for it.
func (s *MarketplaceService) Purchase(ctx context.Context, userID, botID string, method entities.PaymentMethod, reference string) (*entities.Purchase, error) {
	bot, err := s.bots.Get(ctx, botID)
	if err != nil {
		return nil, err
	}
	quote := s.quote(bot)

	hash, err := s.charge(ctx, userID, method, reference, quote)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var owned entities.OwnedBot
	_, err = s.users.Update(ctx, userID, func(u *entities.User) error {
		owned = grantBot(u, bot.ID, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, entities.LogTransaction, fmt.Sprintf("Bot purchased: %s", bot.Name), map[string]any{
		"user":   userID,
		"bot":    bot.ID,
		"method": method,
		"price":  bot.Price,
		"hash":   hash,
	})
	s.recordRevenue(ctx, bot.Price, "bot", bot.ID)

	return &entities.Purchase{
		Bot:    bot,
		Owned:  owned,
		Method: method,
		Quote:  quote,
		Hash:   hash,
	}, nil
}

func (s *MarketplaceService) recordRevenue(ctx context.Context, amount float64, kind, id string) {
	if amount <= 0 {
		return
	}
	if _, err := s.stats.IncrementRevenue(ctx, amount); err != nil {
		s.logger.Error("Failed to record revenue", kind, id, "error", err)
	}
}

// ListPlans returns the membership plans in catalog order.
func (s *MarketplaceService) ListPlans() []entities.SubscriptionPlan {
	return slices.Clone(s.plans)
}

func (s *MarketplaceService) plan(id string) (entities.SubscriptionPlan, error) {
	idx := slices.IndexFunc(s.plans, func(p entities.SubscriptionPlan) bool { return p.ID == id })
	if idx < 0 {
		return entities.SubscriptionPlan{}, fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	return s.plans[idx], nil
}

// PlanQuote prices a membership plan in Telegram Stars and TON.
func (s *MarketplaceService) PlanQuote(planID string) (entities.Quote, error) {
	plan, err := s.plan(planID)
	if err != nil {
		return entities.Quote{}, err
	}
	quote := s.priceQuote(plan.Price)
	quote.PlanID = plan.ID
	return quote, nil
}

// PlanTonPaymentRequest builds the TON Connect request paying for a plan.
func (s *MarketplaceService) PlanTonPaymentRequest(planID string) (*entities.TonConnectRequest, entities.Quote, error) {
	quote, err := s.PlanQuote(planID)
	if err != nil {
		return nil, entities.Quote{}, err
	}
	return s.tonRequest(quote)
}

// PurchasePlan subscribes the user to a plan after charging for it. Paid plans
// grant the premium badge for a billing period, extending an unexpired one.
func (s *MarketplaceService) PurchasePlan(ctx context.Context, userID, planID string, method entities.PaymentMethod, reference string) (*entities.PlanPurchase, error) {
	plan, err := s.plan(planID)
	if err != nil {
		return nil, err
	}
	if _, err = s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	quote, _ := s.PlanQuote(planID)

	hash, err := s.charge(ctx, userID, method, reference, quote)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updated, err := s.users.Update(ctx, userID, func(u *entities.User) error {
		u.Plan = plan.ID
		if plan.Price > 0 {
			grantPremium(u, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, entities.LogTransaction, fmt.Sprintf("Subscription purchased: %s", plan.Name), map[string]any{
		"user":   userID,
		"plan":   plan.ID,
		"method": method,
		"price":  plan.Price,
		"hash":   hash,
	})
	s.recordRevenue(ctx, plan.Price, "plan", plan.ID)

	return &entities.PlanPurchase{
		Plan:             plan,
		Method:           method,
		Quote:            quote,
		Hash:             hash,
		PremiumExpiresAt: updated.PremiumExpiresAt,
	}, nil
}

func grantPremium(u *entities.User, now time.Time) {
	from := now
	if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now) {
		from = *u.PremiumExpiresAt
	}
	expires := from.Add(ports.PremiumValidity)
	u.PremiumExpiresAt = &expires
	if !u.HasBadge(entities.BadgePremium) {
		u.Badges = append(u.Badges, entities.BadgePremium)
	}
}

// grantBot adds the bot to the user's owned bots. A repeated purchase extends
// the expiry of the existing entry.
func grantBot(u *entities.User, botID string, now time.Time) entities.OwnedBot {
	for i := range u.OwnedBots {
		owned := &u.OwnedBots[i]
		if owned.BotID != botID {
			continue
		}
		from := now
		if owned.ExpiresAt != nil && owned.ExpiresAt.After(now) {
			from = *owned.ExpiresAt
		}
		expires := from.Add(ports.OwnedBotValidity)
		owned.ExpiresAt = &expires
		owned.IsActive = true
		return *owned
	}

	expires := now.Add(ports.OwnedBotValidity)
	owned := entities.OwnedBot{
		BotID:       botID,
		PurchasedAt: now,
		ExpiresAt:   &expires,
		IsActive:    true,
	}
	u.OwnedBots = append(u.OwnedBots, owned)
	return owned
}

// OwnedBots returns the user's purchases with IsActive reflecting expiry.
func (s *MarketplaceService) OwnedBots(ctx context.Context, userID string) ([]entities.OwnedBot, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	owned := make([]entities.OwnedBot, 0, len(user.OwnedBots))
	for _, o := range user.OwnedBots {
		if o.ExpiresAt != nil && !o.ExpiresAt.After(now) {
			o.IsActive = false
		}
		owned = append(owned, o)
	}
	return owned, nil
}

func (s *MarketplaceService) logEvent(ctx context.Context, logType entities.LogType, message string, details map[string]any) {
	writeEvent(ctx, s.logger, s.events, logType, message, details)
}
