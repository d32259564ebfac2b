package main

import (
	"log"

	"macrolog/auth"
	"macrolog/config"
	"macrolog/controllers"
	"macrolog/routes"
	"macrolog/services"
	"macrolog/store"
)

func main() {
	config.Load()

	kv, err := store.OpenSQLiteKV(config.DataPath())
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	defer kv.Close()

	hub := services.NewRealtimeHub()
	notify := services.MultiNotifier{services.LogNotifier{}, hub}

	var (
		authn    auth.Authenticator
		profiles store.ProfileStore
		entries  store.EntryStore
		tokens   controllers.TokenSource
	)
	if config.Offline() {
		offline := store.NewOfflineStore(kv)
		if err := offline.EnsureProfile(auth.SingleUserID); err != nil {
			log.Fatalf("seed offline profile: %v", err)
		}
		authn = auth.SingleUser{}
		profiles, entries = offline, offline
	} else {
		db := config.InitDB()
		local := auth.NewLocal(db, kv)
		authn, tokens = local, local
		gs := store.NewGormStore(db)
		profiles, entries = gs, gs
	}

	sessions := services.NewSessionService(authn, profiles, notify)
	entrySvc := services.NewEntryService(entries, notify)
	if !config.Offline() {
		// offline mode's backing store is the KV itself; no second copy
		entrySvc = entrySvc.WithMirror(kv)
	}

	sessions.OnIdentity(entrySvc.OnIdentityChange)
	sessions.Watch()
	defer sessions.Close()
	sessions.ResolveSession()

	controllers.Init(sessions, entrySvc, hub, tokens)
	r := routes.SetupRouter(config.Offline())
	r.Run(":8080")
}
