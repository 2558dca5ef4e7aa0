package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/rmacedo/splitledger/config"
	"github.com/rmacedo/splitledger/eventlogger"
	"github.com/rmacedo/splitledger/ledger"
	"github.com/rmacedo/splitledger/middleware"
	"github.com/rmacedo/splitledger/money"
	"github.com/rmacedo/splitledger/session"
	"github.com/rmacedo/splitledger/user"
)

type participantRequest struct {
	UserID     uuid.UUID `json:"user_id"`
	Weight     float64   `json:"weight,omitempty"`
	Percentage float64   `json:"percentage,omitempty"`
}

type expenseRequest struct {
	Description  string               `json:"description"`
	Amount       json.Number          `json:"amount"` // decimal, converted at the money boundary
	Currency     string               `json:"currency"`
	FxRateToBase float64              `json:"fx_rate_to_base,omitempty"`
	PaidBy       uuid.UUID            `json:"paid_by"`
	SplitType    ledger.SplitType     `json:"split_type"`
	Category     string               `json:"category,omitempty"`
	Status       ledger.ExpenseStatus `json:"status,omitempty"`
	OccurredAt   time.Time            `json:"occurred_at,omitempty"`
	Participants []participantRequest `json:"participants"`
}

func main() {
	cfg := config.Load()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		printErrorAndExit("database connection", err)
	}
	err = db.Ping()
	if err != nil {
		printErrorAndExit("pinging database", err)
	}

	evtlogger := eventlogger.NewSqlEventLogger(db)
	worker := eventlogger.NewWorker(evtlogger, cfg.EventBufferSize)
	worker.Start()
	defer worker.Shutdown()

	userRepo := user.NewRepository(db)
	sessionRepo := session.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.SessionPurgeSpec, func() {
		purged, err := sessionRepo.DeleteExpired(context.Background())
		if err != nil {
			slog.Error("failed to purge expired sessions", "error", err)
			return
		}
		slog.Info("purged expired sessions", "count", purged)
	})
	if err != nil {
		printErrorAndExit("scheduling session purge", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(middleware.AuthMiddleware(sessionRepo))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		evt := eventlogger.NewEvent(
			eventlogger.WithType("health_request"),
			eventlogger.WithData(map[string]string{
				"message":     "ok",
				"http_status": strconv.Itoa(http.StatusOK),
			}),
		)
		worker.Log(evt)
		w.Write([]byte("ok"))
	})

	router.Post("/user/register", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		registeredUser, err := userRepo.Register(ctx, req.Email, req.Password)
		if err != nil {
			switch err {
			case user.ErrEmailExists:
				http.Error(w, err.Error(), http.StatusConflict)
			case user.ErrBlankPassword, user.ErrInvalidEmail:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				slog.Error("failed to register user", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		sess, err := sessionRepo.Create(ctx, registeredUser.ID)
		if err != nil {
			slog.Error("failed to create session", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, sess)

		evt := eventlogger.NewEvent(
			eventlogger.WithType("user.registered"),
			eventlogger.WithData(map[string]string{
				"user_id":    registeredUser.ID.String(),
				"email":      registeredUser.Email,
				"session_id": sess.ID.String(),
			}),
		)
		worker.Log(evt)

		writeJSON(w, http.StatusCreated, registeredUser)
	})

	router.Post("/user/login", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}

		userdb, err := userRepo.GetByEmail(ctx, req.Email)
		if err != nil {
			slog.Error("failed to fetch user", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if userdb == nil || userRepo.VerifyPassword(userdb.PasswordHash, req.Password) != nil {
			http.Error(w, "invalid email or password", http.StatusUnauthorized)
			return
		}

		sess, err := sessionRepo.Create(ctx, userdb.ID)
		if err != nil {
			slog.Error("failed to create session", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		setSessionCookie(w, sess)

		evt := eventlogger.NewEvent(
			eventlogger.WithType("user.logged_in"),
			eventlogger.WithData(map[string]string{
				"user_id":    userdb.ID.String(),
				"email":      userdb.Email,
				"session_id": sess.ID.String(),
			}),
		)
		worker.Log(evt)

		writeJSON(w, http.StatusOK, userdb)
	})

	// Protected routes - require authentication
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth())

		r.Post("/user/logout", func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.CookieName)
			if err == nil {
				sessionRepo.Delete(r.Context(), cookie.Value)
			}

			http.SetCookie(w, &http.Cookie{
				Name:   session.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/user/logout-all", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middleware.GetUserID(r.Context())
			if err := sessionRepo.DeleteByUserID(r.Context(), userID); err != nil {
				slog.Error("failed to delete sessions", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:   session.CookieName,
				Value:  "",
				Path:   "/",
				MaxAge: -1,
			})
			w.WriteHeader(http.StatusNoContent)
		})

		r.Post("/user/profile/update-name", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middleware.GetUserID(r.Context())
			var req struct {
				Name string `json:"name"`
			}
			if !decodeJSON(w, r, &req) {
				return
			}

			if err := userRepo.UpdateName(r.Context(), userID, req.Name); err != nil {
				slog.Error("failed to update name", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			evt := eventlogger.NewEvent(
				eventlogger.WithType("user.name_updated"),
				eventlogger.WithData(map[string]string{
					"user_id": userID.String(),
					"name":    req.Name,
				}),
			)
			worker.Log(evt)
			w.WriteHeader(http.StatusNoContent)
		})

		r.Get("/events", func(w http.ResponseWriter, r *http.Request) {
			limit := 100
			if raw := r.URL.Query().Get("limit"); raw != "" {
				if v, err := strconv.Atoi(raw); err == nil && v > 0 {
					limit = v
				}
			}

			var events []eventlogger.Event
			var err error
			if eventType := r.URL.Query().Get("type"); eventType != "" {
				events, err = evtlogger.GetByType(r.Context(), eventType)
			} else {
				events, err = evtlogger.GetRecent(r.Context(), limit)
			}
			if err != nil {
				slog.Error("failed to fetch events", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			writeJSON(w, http.StatusOK, map[string]any{"events": events})
		})

		r.Post("/ledgers", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middleware.GetUserID(r.Context())
			var req struct {
				Name     string `json:"name"`
				Currency string `json:"currency"`
			}
			if !decodeJSON(w, r, &req) {
				return
			}

			newLedger, err := ledger.NewLedger(req.Name, req.Currency, userID)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			if _, err := ledgerRepo.CreateNew(r.Context(), newLedger); err != nil {
				slog.Error("failed to create ledger", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			evt := eventlogger.NewEvent(
				eventlogger.WithType("ledger.created"),
				eventlogger.WithData(ledger.LedgerCreatedEvent{
					LedgerID:  newLedger.ID.String(),
					Name:      newLedger.Name,
					Currency:  newLedger.Currency,
					CreatedBy: userID.String(),
					CreatedAt: newLedger.CreatedAt,
				}),
			)
			worker.Log(evt)

			writeJSON(w, http.StatusCreated, newLedger)
		})

		r.Route("/ledgers/{ledgerID}", func(r chi.Router) {
			r.Use(requireMember(ledgerRepo))

			r.Post("/members", func(w http.ResponseWriter, r *http.Request) {
				ledgerID := ledgerParam(r)
				var req struct {
					UserID uuid.UUID `json:"user_id"`
				}
				if !decodeJSON(w, r, &req) {
					return
				}

				if err := ledgerRepo.AddMember(r.Context(), ledgerID, req.UserID); err != nil {
					slog.Error("failed to add member", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				w.WriteHeader(http.StatusCreated)
			})

			r.Post("/expenses", func(w http.ResponseWriter, r *http.Request) {
				ledgerID := ledgerParam(r)
				var req expenseRequest
				if !decodeJSON(w, r, &req) {
					return
				}

				amountCents := money.ParseMinorUnits(req.Amount.String())
				expense, splits, err := ledger.NewExpense(
					ledgerID,
					req.Description,
					amountCents,
					req.Currency,
					req.FxRateToBase,
					req.PaidBy,
					req.SplitType,
					req.Category,
					req.OccurredAt,
					toParticipants(req.Participants),
				)
				if err != nil {
					writeDomainError(w, err)
					return
				}

				if err := ledgerRepo.SaveExpense(r.Context(), *expense, splits); err != nil {
					slog.Error("failed to save expense", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				evt := eventlogger.NewEvent(
					eventlogger.WithType("expense.recorded"),
					eventlogger.WithData(ledger.ExpenseRecordedEvent{
						ExpenseID:    expense.ID.String(),
						LedgerID:     ledgerID.String(),
						PaidByUserID: expense.PaidBy.String(),
						AmountCents:  expense.AmountCents,
						Currency:     expense.Currency,
						FxRateToBase: expense.FxRateToBase,
						Description:  expense.Description,
						Category:     expense.Category,
						SplitType:    expense.SplitType,
						OccurredAt:   expense.OccurredAt,
						SplitCount:   len(splits),
					}),
				)
				worker.Log(evt)

				writeJSON(w, http.StatusCreated, map[string]any{
					"expense": expense,
					"splits":  splits,
				})
			})

			r.Put("/expenses/{expenseID}", func(w http.ResponseWriter, r *http.Request) {
				userID, _ := middleware.GetUserID(r.Context())
				existing, err := ledgerRepo.GetExpenseByID(r.Context(), chi.URLParam(r, "expenseID"))
				if err != nil {
					slog.Error("failed to fetch expense", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				if existing == nil || existing.LedgerID != ledgerParam(r) {
					http.Error(w, "expense not found", http.StatusNotFound)
					return
				}

				var req expenseRequest
				if !decodeJSON(w, r, &req) {
					return
				}

				updated := *existing
				if req.Description != "" {
					updated.Description = req.Description
				}
				if req.Category != "" {
					updated.Category = req.Category
				}
				if req.Currency != "" {
					updated.Currency = req.Currency
				}
				if req.FxRateToBase > 0 {
					updated.FxRateToBase = req.FxRateToBase
				}
				if req.PaidBy != uuid.Nil {
					updated.PaidBy = req.PaidBy
				}
				if !req.OccurredAt.IsZero() {
					updated.OccurredAt = req.OccurredAt
				}
				if req.Amount.String() != "" {
					updated.AmountCents = money.ParseMinorUnits(req.Amount.String())
					if updated.AmountCents <= 0 {
						http.Error(w, ledger.ErrInvalidAmount.Error(), http.StatusBadRequest)
						return
					}
				}
				if req.SplitType != "" {
					updated.SplitType = req.SplitType
				}

				statusChanged := req.Status != "" && req.Status != existing.Status
				if statusChanged {
					if !ledger.ValidStatus(req.Status) {
						http.Error(w, ledger.ErrInvalidStatus.Error(), http.StatusBadRequest)
						return
					}
					updated.Status = req.Status
					if req.Status == ledger.StatusSettled {
						now := time.Now().UTC()
						updated.SettledAt = &now
					} else {
						updated.SettledAt = nil
					}
				}

				statusOnly := statusChanged &&
					req.Description == "" && req.Category == "" && req.Currency == "" &&
					req.FxRateToBase == 0 && req.PaidBy == uuid.Nil && req.OccurredAt.IsZero() &&
					req.Amount.String() == "" && req.SplitType == "" && len(req.Participants) == 0
				if statusOnly {
					if err := ledgerRepo.UpdateExpenseStatus(r.Context(), updated.ID, updated.Status, updated.SettledAt); err != nil {
						slog.Error("failed to update expense status", "error", err)
						http.Error(w, "Internal server error", http.StatusInternalServerError)
						return
					}

					evt := eventlogger.NewEvent(
						eventlogger.WithType("expense.status_changed"),
						eventlogger.WithData(ledger.ExpenseStatusChangedEvent{
							ExpenseID: updated.ID.String(),
							LedgerID:  updated.LedgerID.String(),
							From:      existing.Status,
							To:        updated.Status,
							ChangedBy: userID.String(),
						}),
					)
					worker.Log(evt)

					writeJSON(w, http.StatusOK, map[string]any{"expense": updated})
					return
				}

				// Amount or membership edits re-run the allocator so the
				// splits keep summing exactly to the total.
				var splits []ledger.Split
				if len(req.Participants) > 0 {
					splits, err = ledger.AllocateSplits(updated.ID, updated.AmountCents, updated.SplitType, toParticipants(req.Participants))
					if err != nil {
						writeDomainError(w, err)
						return
					}
				} else {
					splits, err = ledgerRepo.GetSplitsByExpense(r.Context(), updated.ID.String())
					if err != nil {
						slog.Error("failed to fetch splits", "error", err)
						http.Error(w, "Internal server error", http.StatusInternalServerError)
						return
					}
					var sum int64
					for _, s := range splits {
						sum += s.AmountCents
					}
					if sum != updated.AmountCents {
						http.Error(w, "amount change requires participants", http.StatusUnprocessableEntity)
						return
					}
				}

				if err := ledgerRepo.UpdateExpense(r.Context(), updated, splits); err != nil {
					slog.Error("failed to update expense", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				if statusChanged {
					evt := eventlogger.NewEvent(
						eventlogger.WithType("expense.status_changed"),
						eventlogger.WithData(ledger.ExpenseStatusChangedEvent{
							ExpenseID: updated.ID.String(),
							LedgerID:  updated.LedgerID.String(),
							From:      existing.Status,
							To:        updated.Status,
							ChangedBy: userID.String(),
						}),
					)
					worker.Log(evt)
				}

				writeJSON(w, http.StatusOK, map[string]any{
					"expense": updated,
					"splits":  splits,
				})
			})

			r.Get("/expenses", func(w http.ResponseWriter, r *http.Request) {
				ledgerID := ledgerParam(r)
				limit := 50
				if raw := r.URL.Query().Get("limit"); raw != "" {
					if v, err := strconv.Atoi(raw); err == nil && v > 0 {
						limit = v
					}
				}

				expenses, err := ledgerRepo.GetRecentExpenses(r.Context(), ledgerID.String(), limit)
				if err != nil {
					slog.Error("failed to fetch expenses", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				splits, err := ledgerRepo.GetExpenseSplits(r.Context(), ledgerID.String())
				if err != nil {
					slog.Error("failed to fetch splits", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				writeJSON(w, http.StatusOK, map[string]any{
					"expenses": expenses,
					"splits":   splits,
				})
			})

			r.Get("/balances", func(w http.ResponseWriter, r *http.Request) {
				balances, matrix, ok := loadBalances(w, r, ledgerRepo)
				if !ok {
					return
				}

				writeJSON(w, http.StatusOK, map[string]any{
					"net_balances": sortedBalances(balances),
					"matrix":       matrix,
				})
			})

			r.Get("/settlements/suggest", func(w http.ResponseWriter, r *http.Request) {
				balances, _, ok := loadBalances(w, r, ledgerRepo)
				if !ok {
					return
				}

				instructions := ledger.Minimize(balances)

				evt := eventlogger.NewEvent(
					eventlogger.WithType("settlement.suggested"),
					eventlogger.WithData(map[string]string{
						"ledger_id":    ledgerParam(r).String(),
						"instructions": strconv.Itoa(len(instructions)),
					}),
				)
				worker.Log(evt)

				writeJSON(w, http.StatusOK, map[string]any{"instructions": instructions})
			})

			r.Get("/settlements", func(w http.ResponseWriter, r *http.Request) {
				settlements, err := ledgerRepo.GetSettlements(r.Context(), ledgerParam(r).String())
				if err != nil {
					slog.Error("failed to fetch settlements", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"settlements": settlements})
			})

			r.Post("/settlements", func(w http.ResponseWriter, r *http.Request) {
				ledgerID := ledgerParam(r)
				var req struct {
					FromUserID  uuid.UUID `json:"from_user_id"`
					ToUserID    uuid.UUID `json:"to_user_id"`
					AmountCents int64     `json:"amount_cents"`
					Note        string    `json:"note,omitempty"`
				}
				if !decodeJSON(w, r, &req) {
					return
				}
				if req.AmountCents <= 0 {
					http.Error(w, ledger.ErrInvalidAmount.Error(), http.StatusBadRequest)
					return
				}

				settlement := ledger.Settlement{
					ID:          uuid.New(),
					LedgerID:    ledgerID,
					FromUserID:  req.FromUserID,
					ToUserID:    req.ToUserID,
					AmountCents: req.AmountCents,
					Note:        req.Note,
					CreatedAt:   time.Now().UTC(),
				}
				if err := ledgerRepo.SaveSettlement(r.Context(), settlement); err != nil {
					slog.Error("failed to save settlement", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				evt := eventlogger.NewEvent(
					eventlogger.WithType("settlement.recorded"),
					eventlogger.WithData(ledger.SettlementRecordedEvent{
						SettlementID: settlement.ID.String(),
						LedgerID:     ledgerID.String(),
						FromUserID:   settlement.FromUserID.String(),
						ToUserID:     settlement.ToUserID.String(),
						AmountCents:  settlement.AmountCents,
					}),
				)
				worker.Log(evt)

				writeJSON(w, http.StatusCreated, settlement)
			})

			r.Post("/settlements/{settlementID}/confirm", func(w http.ResponseWriter, r *http.Request) {
				userID, _ := middleware.GetUserID(r.Context())
				settlementID := chi.URLParam(r, "settlementID")
				confirmedAt := time.Now().UTC()

				if err := ledgerRepo.ConfirmSettlement(r.Context(), settlementID, confirmedAt); err != nil {
					slog.Error("failed to confirm settlement", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}

				evt := eventlogger.NewEvent(
					eventlogger.WithType("settlement.confirmed"),
					eventlogger.WithData(ledger.SettlementConfirmedEvent{
						SettlementID: settlementID,
						LedgerID:     ledgerParam(r).String(),
						ConfirmedBy:  userID.String(),
						ConfirmedAt:  confirmedAt,
					}),
				)
				worker.Log(evt)
				w.WriteHeader(http.StatusNoContent)
			})

			r.Get("/analytics/aging", func(w http.ResponseWriter, r *http.Request) {
				expenses, err := ledgerRepo.GetExpenses(r.Context(), ledgerParam(r).String())
				if err != nil {
					slog.Error("failed to fetch expenses", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{
					"buckets": ledger.AgingBuckets(expenses, time.Now().UTC()),
				})
			})

			r.Get("/analytics/velocity", func(w http.ResponseWriter, r *http.Request) {
				expenses, err := ledgerRepo.GetExpenses(r.Context(), ledgerParam(r).String())
				if err != nil {
					slog.Error("failed to fetch expenses", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				writeJSON(w, http.StatusOK, ledger.Velocity(expenses))
			})

			r.Get("/analytics/fairness", func(w http.ResponseWriter, r *http.Request) {
				balances, _, ok := loadBalances(w, r, ledgerRepo)
				if !ok {
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{
					"scores": ledger.FairnessMetrics(balances),
				})
			})

			r.Get("/analytics/participation", func(w http.ResponseWriter, r *http.Request) {
				ledgerID := ledgerParam(r).String()
				expenses, splits, memberIDs, ok := loadCollection(w, r, ledgerRepo, ledgerID)
				if !ok {
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{
					"rates": ledger.ParticipationMetrics(expenses, splits, memberIDs),
				})
			})
		})
	})

	slog.Info("server starting", "port", cfg.Port)
	http.ListenAndServe(":"+strconv.Itoa(cfg.Port), router)
}

// requireMember rejects requests for ledgers the caller doesn't belong to.
func requireMember(repo interface {
	IsMember(ctx context.Context, ledgerID, userID uuid.UUID) (bool, error)
}) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := middleware.GetUserID(r.Context())
			ledgerID, err := uuid.Parse(chi.URLParam(r, "ledgerID"))
			if err != nil {
				http.Error(w, "invalid ledger id", http.StatusBadRequest)
				return
			}

			member, err := repo.IsMember(r.Context(), ledgerID, userID)
			if err != nil {
				slog.Error("failed to check membership", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !member {
				http.Error(w, "not a member of this ledger", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ledgerParam(r *http.Request) uuid.UUID {
	id, _ := uuid.Parse(chi.URLParam(r, "ledgerID"))
	return id
}

func toParticipants(reqs []participantRequest) []ledger.Participant {
	participants := make([]ledger.Participant, 0, len(reqs))
	for _, p := range reqs {
		participants = append(participants, ledger.Participant{
			UserID:     p.UserID,
			Weight:     p.Weight,
			Percentage: p.Percentage,
		})
	}
	return participants
}

type ledgerReader interface {
	GetExpenses(ctx context.Context, ledgerID string) ([]ledger.Expense, error)
	GetExpenseSplits(ctx context.Context, ledgerID string) ([]ledger.Split, error)
	GetLedgerMembers(ctx context.Context, ledgerID string) ([]ledger.LedgerUser, error)
}

func loadCollection(w http.ResponseWriter, r *http.Request, repo ledgerReader, ledgerID string) ([]ledger.Expense, []ledger.Split, []uuid.UUID, bool) {
	expenses, err := repo.GetExpenses(r.Context(), ledgerID)
	if err != nil {
		slog.Error("failed to fetch expenses", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, nil, nil, false
	}
	splits, err := repo.GetExpenseSplits(r.Context(), ledgerID)
	if err != nil {
		slog.Error("failed to fetch splits", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, nil, nil, false
	}
	members, err := repo.GetLedgerMembers(r.Context(), ledgerID)
	if err != nil {
		slog.Error("failed to fetch members", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return nil, nil, nil, false
	}

	memberIDs := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.UserID)
	}
	return expenses, splits, memberIDs, true
}

func loadBalances(w http.ResponseWriter, r *http.Request, repo ledgerReader) (map[uuid.UUID]*ledger.NetBalance, ledger.BalanceMatrix, bool) {
	ledgerID := chi.URLParam(r, "ledgerID")
	expenses, splits, memberIDs, ok := loadCollection(w, r, repo, ledgerID)
	if !ok {
		return nil, nil, false
	}
	balances, matrix := ledger.ComputeBalances(expenses, splits, memberIDs)
	return balances, matrix, true
}

func sortedBalances(balances map[uuid.UUID]*ledger.NetBalance) []*ledger.NetBalance {
	out := make([]*ledger.NetBalance, 0, len(balances))
	for _, b := range balances {
		out = append(out, b)
	}
	sort.Slice(out, func(a, b int) bool {
		return out[a].UserID.String() < out[b].UserID.String()
	})
	return out
}

func setSessionCookie(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidSplit):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrEmptyCurrency),
		errors.Is(err, ledger.ErrNoParticipants),
		errors.Is(err, ledger.ErrUnsupportedSplitType):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("unexpected domain error", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func printErrorAndExit(msg string, e error) {
	slog.Error(msg, "error", e)
	os.Exit(1)
}
