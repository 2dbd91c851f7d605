package web

import (
	"encoding/json"
	"fmt"
	"time"

	"ammonit/internal/db"
	"ammonit/internal/model"

	"github.com/google/uuid"
)

// SeedCounts is how many demo records Seed writes per collection.
var SeedCounts = map[string]int{
	"users":   23,
	"clients": 12,
	"orders":  35,
	"emails":  3,
	"prompts": 4,
}

// seedID derives a stable id so seeding twice updates instead of
// duplicating.
func seedID(collection string, n int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "ammonit:%s:%d", collection, n)).String()
}

var seedEpoch = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)

// Seed fills store with deterministic demo data. The first user is the
// superuser the dev backend reports as the current user.
func Seed(store db.Store) error {
	admin := seedID("users", 1)

	save := func(collection, id string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := store.SaveRecord(collection, id, data); err != nil {
			return fmt.Errorf("seed %s: %w", collection, err)
		}
		return nil
	}

	for i := 1; i <= SeedCounts["users"]; i++ {
		u := model.User{
			ID:       seedID("users", i),
			Email:    fmt.Sprintf("user%02d@ammonit.test", i),
			FullName: fmt.Sprintf("Usuario %02d", i),
			IsActive: i%7 != 0,
		}
		if i == 1 {
			u.Email = "admin@ammonit.test"
			u.FullName = "Administrador"
			u.IsSuperuser = true
			u.IsAutoApproved = true
		}
		if err := save("users", u.ID, u); err != nil {
			return err
		}
	}

	clientNames := make([]string, 0, SeedCounts["clients"])
	for i := 1; i <= SeedCounts["clients"]; i++ {
		c := model.Client{
			ID:        seedID("clients", i),
			OwnerID:   admin,
			Name:      fmt.Sprintf("Cliente %02d", i),
			Clasifier: []string{"pedido", "albarán", "factura"}[i%3],
		}
		clientNames = append(clientNames, c.Name)
		if err := save("clients", c.ID, c); err != nil {
			return err
		}
	}

	for i := 1; i <= SeedCounts["orders"]; i++ {
		processed := seedEpoch.Add(time.Duration(i) * 6 * time.Hour)
		o := model.Order{
			ID:               seedID("orders", i),
			OwnerID:          admin,
			ClientName:       clientNames[i%len(clientNames)],
			BaseDocumentName: fmt.Sprintf("pedido-%04d.pdf", i),
			DateProcessed:    &processed,
		}
		if i%4 != 0 {
			approved := i%5 != 0
			o.IsApproved = &approved
		}
		if err := save("orders", o.ID, o); err != nil {
			return err
		}
	}

	for i := 1; i <= SeedCounts["emails"]; i++ {
		e := model.Email{
			ID:          seedID("emails", i),
			OwnerID:     admin,
			Email:       fmt.Sprintf("pedidos%d@ammonit.test", i),
			Filter:      "subject:pedido",
			IsActive:    true,
			IsConnected: i == 1,
		}
		if err := save("emails", e.ID, e); err != nil {
			return err
		}
	}

	for i := 1; i <= SeedCounts["prompts"]; i++ {
		p := model.Prompt{
			ID:        seedID("prompts", i),
			Query:     []string{"clasificar", "extraer", "validar", "resumir"}[(i-1)%4],
			Service:   "openai",
			Model:     "gpt-4o-mini",
			Prompt:    "Eres un asistente que procesa pedidos.",
			Version:   i,
			CreatedAt: seedEpoch.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := save("prompts", p.ID, p); err != nil {
			return err
		}
	}
	return nil
}
