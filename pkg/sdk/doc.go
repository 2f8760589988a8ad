// Package pilotprefs embeds the pilot preference updater in a Go program,
// talking to Valkey or Redis directly instead of going through the callable endpoint.
//
//	client, _ := pilotprefs.New(ctx, pilotprefs.WithValkey("localhost:6379", ""),
//	    pilotprefs.WithKeyPrefix("pilotprefs:"),
//	)
//	defer client.Close()
//
//	_ = client.UpdatePreferences(ctx, uid, "hotelApp", "looking for a pool in rome")
//	p, _ := client.Profile(ctx, uid, "hotelApp")
//
// Callers are identified by the uid the embedding program has already authenticated.
package pilotprefs
