// seed aplica las migraciones y carga un usuario de ejemplo con productos de muestra
// en una sola transacción.
//
// Uso: go run ./cmd/seed [email] [password]
// Por defecto: demo@inventario.local / demo1234
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Inventario-sync/internal/domain/entity"
	"github.com/jhoicas/Inventario-sync/internal/infrastructure/postgres"
	"github.com/jhoicas/Inventario-sync/pkg/config"
	"github.com/jhoicas/Inventario-sync/pkg/currency"
	"github.com/jhoicas/Inventario-sync/pkg/logger"
)

var sampleProducts = []entity.ProductFields{
	{Name: "Agua mineral 500ml", Code: "BEB-001", Category: "Bebidas", Price: 5000, Stock: 48},
	{Name: "Arroz 1kg", Code: "ALI-001", Category: "Alimentos", Price: 12000, Stock: 20},
	{Name: "Jabón en barra", Code: "HIG-001", Category: "Higiene", Price: 8000, Stock: 3},
	{Name: "Lavandina 1L", Code: "LIM-001", Category: "Limpieza", Price: 9500, Stock: 0},
	{Name: "Yerba mate 500g", Code: "ALI-002", Category: "Alimentos", Price: 18000, Stock: 12},
	{Name: "Pilas AA x2", Code: "OTR-001", Category: "Otros", Price: 15000, Stock: 5},
}

func main() {
	email, password := "demo@inventario.local", "demo1234"
	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		password = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
		os.Exit(1)
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Hash: %v\n", err)
		os.Exit(1)
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	store := postgres.NewProductStore(pool, postgres.NewNotifier(pool, log.Component("notifier")), log.Component("postgres"))
	runner := postgres.NewTxRunner(pool, store)
	var total int64
	err = runner.Run(ctx, func(products *postgres.ProductStore, users *postgres.UserRepo) error {
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("usuario %s: %w", email, err)
		}
		for _, f := range sampleProducts {
			data := entity.ProductData{ProductFields: f, OwnerID: user.ID, CreatedAt: time.Now().UTC()}
			if _, err := products.Add(ctx, data); err != nil {
				return fmt.Errorf("producto %s: %w", f.Code, err)
			}
			total += f.Price * f.Stock
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Usuario %s creado con %d productos (valor total %s)\n", user.Email, len(sampleProducts), currency.FormatGuarani(total))
}
