package handlers

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/cart"
	"storefront-api/services/catalog"
	"storefront-api/services/checkout"
	"storefront-api/services/storefront"
	"storefront-api/utils"
)

func init() {
	gob.Register([]models.CartItem{})
	gob.Register(models.OrderSummary{})
}

const (
	sessionName = "storefront-session"

	cartKey      = "cart"
	lastOrderKey = "last_order"
	checkoutKey  = "checkout"

	maxBodyBytes = 1 << 20
)

var validate = validator.New()

// SessionOptions configures the visitor cookie.
type SessionOptions struct {
	Secret string
	Domain string
	MaxAge int
	Secure bool
}

// NewCookieStore signs cookies with opts.Secret, or with a per-process random key when it is empty.
func NewCookieStore(opts SessionOptions) *sessions.CookieStore {
	key := []byte(opts.Secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Visitors loads and saves the per-visitor application state kept in the session cookie.
type Visitors struct {
	store     sessions.Store
	catalog   catalog.Catalog
	customHat cart.CustomHatProduct
	notifier  storefront.OrderNotifier
	delay     time.Duration
	logger    *zap.Logger
}

type VisitorConfig struct {
	Store           sessions.Store
	Catalog         catalog.Catalog
	CustomHat       cart.CustomHatProduct
	Notifier        storefront.OrderNotifier
	ProcessingDelay time.Duration
	Logger          *zap.Logger
}

func NewVisitors(cfg VisitorConfig) *Visitors {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Visitors{
		store:     cfg.Store,
		catalog:   cfg.Catalog,
		customHat: cfg.CustomHat,
		notifier:  cfg.Notifier,
		delay:     cfg.ProcessingDelay,
		logger:    logger,
	}
}

// visitor is one request's view of the session.
type visitor struct {
	session *sessions.Session
	store   *storefront.Store
	flow    *checkout.Flow
}

func (v *Visitors) load(r *http.Request) *visitor {
	session, err := v.store.Get(r, sessionName)
	if err != nil {
		// An undecodable cookie (rotated secret, tampering) starts a fresh session.
		v.logger.Warn("discarding unreadable session", zap.Error(err))
	}
	if session == nil {
		session = sessions.NewSession(v.store, sessionName)
	}

	items, _ := session.Values[cartKey].([]models.CartItem)
	c := cart.New(v.catalog, v.customHat, v.logger, items)

	var lastOrder *models.OrderSummary
	if summary, ok := session.Values[lastOrderKey].(models.OrderSummary); ok {
		lastOrder = &summary
	}

	flow := checkout.NewFlow(v.delay)
	if snapshot, ok := session.Values[checkoutKey].(checkout.Snapshot); ok {
		flow = checkout.Restore(snapshot, v.delay)
	}

	return &visitor{
		session: session,
		store:   storefront.New(c, lastOrder, v.notifier, v.logger),
		flow:    flow,
	}
}

func (v *Visitors) save(w http.ResponseWriter, r *http.Request, vis *visitor) error {
	vis.session.Values[cartKey] = vis.store.Cart.Items()

	if last := vis.store.LastOrder(); last != nil {
		vis.session.Values[lastOrderKey] = *last
	}

	if vis.flow == nil || vis.flow.Status() == checkout.StatusSucceeded {
		delete(vis.session.Values, checkoutKey)
	} else {
		vis.session.Values[checkoutKey] = vis.flow.Snapshot()
	}

	if err := vis.session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (v *Visitors) saveOrFail(w http.ResponseWriter, r *http.Request, vis *visitor) bool {
	if err := v.save(w, r, vis); err != nil {
		v.logger.Error("error saving session", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not save your session")
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

func cartResponse(c *cart.Cart) models.CartResponse {
	return models.CartResponse{
		Items:     c.Items(),
		ItemCount: c.ItemCount(),
		Totals:    c.GetCartTotals(),
	}
}
