package service

import (
	"github.com/clubdoor/clubdoor/internal/clock"
	"github.com/clubdoor/clubdoor/internal/mailer"
	"github.com/clubdoor/clubdoor/internal/notify"
	postgres "github.com/clubdoor/clubdoor/internal/repository/postgres"
	redis "github.com/clubdoor/clubdoor/internal/repository/redis"
	"github.com/clubdoor/clubdoor/internal/service/admin"
	"github.com/clubdoor/clubdoor/internal/service/admission"
	"github.com/clubdoor/clubdoor/internal/service/query"
	"github.com/clubdoor/clubdoor/internal/service/referral"
	"github.com/clubdoor/clubdoor/internal/service/scan"
	"github.com/clubdoor/clubdoor/internal/service/waitlist"
)

type Services struct {
	Admission *admission.Service
	Waitlist  *waitlist.Service
	Referral  *referral.Service
	Scan      *scan.Service
	Query     *query.Service
	Admin     *admin.Service
}

type Config struct {
	Waitlist waitlist.Config
	Referral referral.Config
	Scan     scan.Config
	Query    query.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.AdmissionsPubSub,
	mail mailer.Mailer,
	clk clock.Clock,
	cfg Config,
) *Services {
	notifier := notify.New(cache, pubsub)
	referrals := referral.New(store.Referrals(), cache, cfg.Referral)

	return &Services{
		Admission: admission.New(store.Admissions(), referrals, store.Query(), mail, notifier, clk),
		Waitlist:  waitlist.New(store.Waitlist(), referrals, store.Query(), mail, clk, cfg.Waitlist),
		Referral:  referrals,
		Scan:      scan.New(store.Scans(), notifier, clk, cfg.Scan),
		Query:     query.New(store.Query(), cache, clk, cfg.Query),
		Admin:     admin.New(store.Admin(), notifier),
	}
}
