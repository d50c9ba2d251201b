package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

type profileRow struct {
	bun.BaseModel `bun:"table:user_profiles,alias:p"`

	ID            string    `bun:"id,pk"`
	Name          string    `bun:"name,notnull"`
	Email         string    `bun:"email"`
	Phone         string    `bun:"phone"`
	CheckoutCount int64     `bun:"checkout_count,notnull,default:0"`
	TotalSpent    int64     `bun:"total_spent,notnull,default:0"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

func (r *profileRow) toProfile() *contractx.Profile {
	return &contractx.Profile{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		CheckoutCount: r.CheckoutCount,
		TotalSpent:    r.TotalSpent,
		CreatedAt:     r.CreatedAt,
	}
}

type addressRow struct {
	bun.BaseModel `bun:"table:addresses,alias:a"`

	ID         string    `bun:"id,pk"`
	UserID     string    `bun:"user_id,notnull"`
	Category   string    `bun:"category,notnull"`
	Name       string    `bun:"name"`
	Line1      string    `bun:"line1,notnull"`
	Line2      string    `bun:"line2"`
	City       string    `bun:"city"`
	State      string    `bun:"state"`
	PostalCode string    `bun:"postal_code"`
	Country    string    `bun:"country"`
	Phone      string    `bun:"phone"`
	IsDefault  bool      `bun:"is_default,notnull,default:false"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (r *addressRow) toAddress() contractx.Address {
	return contractx.Address{
		ID:         r.ID,
		UserID:     r.UserID,
		Category:   contractx.AddressCategory(r.Category),
		Name:       r.Name,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

type paymentMethodRow struct {
	bun.BaseModel `bun:"table:payment_methods,alias:m"`

	ID         string    `bun:"id,pk"`
	UserID     string    `bun:"user_id,notnull"`
	Type       string    `bun:"type,notnull"`
	Label      string    `bun:"label"`
	CardToken  string    `bun:"card_token"`
	Brand      string    `bun:"brand"`
	LastDigits string    `bun:"last_digits"`
	Bank       string    `bun:"bank"`
	IsDefault  bool      `bun:"is_default,notnull,default:false"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (r *paymentMethodRow) toPaymentMethod() contractx.PaymentMethod {
	return contractx.PaymentMethod{
		ID:         r.ID,
		UserID:     r.UserID,
		Type:       contractx.PaymentMethodType(r.Type),
		Label:      r.Label,
		CardToken:  r.CardToken,
		Brand:      r.Brand,
		LastDigits: r.LastDigits,
		Bank:       r.Bank,
		IsDefault:  r.IsDefault,
	}
}

// PostgresStore keeps profile data in Postgres via bun. Default flags are
// maintained transactionally so a user never ends up with two defaults in
// the same category.
type PostgresStore struct {
	db    *bun.DB
	newID func() string
	now   func() time.Time
}

var _ contractx.ProfileStore = (*PostgresStore)(nil)

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	return &PostgresStore{
		db:    db,
		newID: uuid.NewString,
		now:   time.Now,
	}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the profile tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	models := []any{(*profileRow)(nil), (*addressRow)(nil), (*paymentMethodRow)(nil)}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create profile tables: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) CreateProfile(ctx context.Context, in contractx.ProfileInput) (*contractx.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: profile name is required", contractx.ErrValidation)
	}

	row := &profileRow{
		ID:        s.newID(),
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return row.toProfile(), nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*contractx.Profile, error) {
	row := new(profileRow)
	err := s.db.NewSelect().Model(row).Where("p.id = ?", strings.TrimSpace(userID)).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", contractx.ErrProfileNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("select profile: %w", err)
	}
	return row.toProfile(), nil
}

func (s *PostgresStore) ListAddresses(ctx context.Context, userID string) ([]contractx.Address, error) {
	var rows []addressRow
	err := s.db.NewSelect().Model(&rows).
		Where("a.user_id = ?", strings.TrimSpace(userID)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select addresses: %w", err)
	}

	out := make([]contractx.Address, len(rows))
	for i := range rows {
		out[i] = rows[i].toAddress()
	}
	return out, nil
}

func (s *PostgresStore) AddShippingAddress(ctx context.Context, userID string, in contractx.AddressInput) (*contractx.Address, error) {
	return s.addAddress(ctx, userID, in, contractx.AddressShipping)
}

func (s *PostgresStore) AddBillingAddress(ctx context.Context, userID string, in contractx.AddressInput) (*contractx.Address, error) {
	return s.addAddress(ctx, userID, in, contractx.AddressBilling)
}

func (s *PostgresStore) addAddress(ctx context.Context, userID string, in contractx.AddressInput, category contractx.AddressCategory) (*contractx.Address, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	row := &addressRow{
		ID:         s.newID(),
		UserID:     userID,
		Category:   string(category),
		Name:       in.Name,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
		IsDefault:  in.IsDefault,
		CreatedAt:  s.now().UTC(),
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if in.IsDefault {
			_, err := tx.NewUpdate().Model((*addressRow)(nil)).
				Set("is_default = FALSE").
				Where("user_id = ? AND category = ?", userID, string(category)).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("clear default address: %w", err)
			}
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	address := row.toAddress()
	return &address, nil
}

func (s *PostgresStore) ListPaymentMethods(ctx context.Context, userID string) ([]contractx.PaymentMethod, error) {
	var rows []paymentMethodRow
	err := s.db.NewSelect().Model(&rows).
		Where("m.user_id = ?", strings.TrimSpace(userID)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select payment methods: %w", err)
	}

	out := make([]contractx.PaymentMethod, len(rows))
	for i := range rows {
		out[i] = rows[i].toPaymentMethod()
	}
	return out, nil
}

func (s *PostgresStore) AddPaymentMethod(ctx context.Context, userID string, in contractx.PaymentMethodInput) (*contractx.PaymentMethod, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method type %q", contractx.ErrValidation, in.Type)
	}

	row := &paymentMethodRow{
		ID:         s.newID(),
		UserID:     userID,
		Type:       string(in.Type),
		Label:      in.Label,
		CardToken:  in.CardToken,
		Brand:      in.Brand,
		LastDigits: in.LastDigits,
		Bank:       in.Bank,
		IsDefault:  in.IsDefault,
		CreatedAt:  s.now().UTC(),
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if in.IsDefault {
			_, err := tx.NewUpdate().Model((*paymentMethodRow)(nil)).
				Set("is_default = FALSE").
				Where("user_id = ?", userID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("clear default payment method: %w", err)
			}
		}
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert payment method: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	method := row.toPaymentMethod()
	return &method, nil
}

func (s *PostgresStore) QuickCheckoutData(ctx context.Context, userID string) (*contractx.QuickCheckoutData, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	data := &contractx.QuickCheckoutData{}

	for _, category := range []contractx.AddressCategory{contractx.AddressShipping, contractx.AddressBilling} {
		row := new(addressRow)
		err := s.db.NewSelect().Model(row).
			Where("a.user_id = ? AND a.category = ? AND a.is_default", userID, string(category)).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("select default %s address: %w", category, err)
		}
		address := row.toAddress()
		if category == contractx.AddressShipping {
			data.ShippingAddress = &address
		} else {
			data.BillingAddress = &address
		}
	}

	row := new(paymentMethodRow)
	err := s.db.NewSelect().Model(row).
		Where("m.user_id = ? AND m.is_default", userID).
		Limit(1).
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select default payment method: %w", err)
	}
	if err == nil {
		method := row.toPaymentMethod()
		data.PaymentMethod = &method
	}

	return data, nil
}

func (s *PostgresStore) RecordCheckout(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: checkout amount must not be negative", contractx.ErrValidation)
	}

	res, err := s.db.NewUpdate().Model((*profileRow)(nil)).
		Set("checkout_count = checkout_count + 1").
		Set("total_spent = total_spent + ?", amount).
		Where("id = ?", strings.TrimSpace(userID)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update profile counters: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile counters: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", contractx.ErrProfileNotFound, userID)
	}
	return nil
}
