// seed carga datos de desarrollo: dos tenants con sus iglesias, usuarios de
// cada rol, un service, eventos, un grupo de vida, un pathway y los feature
// flags iniciales. Todos los usuarios usan el password "password123".
// Re-ejecutarlo es seguro: los conflictos por duplicado se saltean.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/shepherd/internal/config"
	"github.com/dropDatabas3/shepherd/internal/domain"
	"github.com/dropDatabas3/shepherd/internal/domain/repository"
	"github.com/dropDatabas3/shepherd/internal/security/password"
	"github.com/dropDatabas3/shepherd/internal/store/pg"
)

const seedPassword = "password123"

func main() {
	var configPath = flag.String("config", "configs/config.yaml", "Path to YAML config")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.IsProd() {
		log.Fatal("seed is for dev/staging only")
	}

	ctx := context.Background()
	store, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer store.Close()

	hash, err := password.Hash(password.Default, seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	s := seeder{store: store, hash: hash}

	manila := s.tenant(ctx, "Victory Manila", "manila")
	cebu := s.tenant(ctx, "Victory Cebu", "cebu")

	manilaMain := s.church(ctx, manila, "Manila Main", "manila-main")
	manilaNorth := s.church(ctx, manila, "Manila North", "manila-north")
	cebuMain := s.church(ctx, cebu, "Cebu Main", "cebu-main")

	// SUPER_ADMIN global, sin tenant.
	s.user(ctx, "", "", "superadmin@test.com", "Root Admin", domain.RoleSuperAdmin)

	s.user(ctx, manila, manilaMain, "admin.manila@test.com", "Ana Admin", domain.RoleAdmin)
	s.user(ctx, manila, manilaMain, "pastor.manila@test.com", "Pedro Pastor", domain.RolePastor)
	leader := s.user(ctx, manila, manilaMain, "leader.manila@test.com", "Lucas Leader", domain.RoleLeader)
	s.user(ctx, manila, manilaMain, "vip.manila@test.com", "Vera Vip", domain.RoleVIP)
	member1 := s.user(ctx, manila, manilaMain, "member1@test.com", "Maria Member", domain.RoleMember)
	s.user(ctx, manila, manilaNorth, "member2@test.com", "Marcos Member", domain.RoleMember)
	s.user(ctx, cebu, cebuMain, "admin.cebu@test.com", "Carla Admin", domain.RoleAdmin)
	s.user(ctx, cebu, cebuMain, "member3@test.com", "Miguel Member", domain.RoleMember)

	nextSunday := upcoming(time.Sunday)
	if _, err := store.Attendance().CreateService(ctx, repository.CreateServiceInput{
		LocalChurchID: manilaMain,
		Name:          "Sunday Service 10AM",
		ServiceDate:   nextSunday.Add(10 * time.Hour),
	}); err != nil {
		log.Printf("skip service: %v", err)
	}

	if _, err := store.Events().Create(ctx, repository.CreateEventInput{
		LocalChurchID: manilaMain,
		Title:         "Youth Night",
		Description:   "Worship and games for the youth",
		Location:      "Main Hall",
		StartsAt:      nextSunday.Add(5 * 24 * time.Hour).Add(19 * time.Hour),
		EndsAt:        nextSunday.Add(5 * 24 * time.Hour).Add(22 * time.Hour),
		Capacity:      150,
		CreatedBy:     leader,
	}); err != nil {
		log.Printf("skip event: %v", err)
	}

	if _, err := store.Groups().CreateGroup(ctx, repository.CreateGroupInput{
		LocalChurchID: manilaMain,
		LeaderID:      leader,
		Name:          "Young Pros Group",
		Description:   "Wednesdays 7PM, near Makati",
	}); err != nil {
		log.Printf("skip group: %v", err)
	}
	_ = member1

	if _, err := store.Pathways().Create(ctx, repository.CreatePathwayInput{
		TenantID:    manila,
		Name:        "ROOTS",
		Description: "Foundations track for new believers",
		StepNames:   []string{"One2One", "Victory Weekend", "Church Community", "Purple Book"},
	}); err != nil && !errors.Is(err, repository.ErrConflict) {
		log.Printf("skip pathway: %v", err)
	}

	s.flag(ctx, "mobile_checkin", "Self check-in desde el app móvil", true, 100, "low")
	s.flag(ctx, "group_join_requests", "Solicitudes de ingreso a grupos", true, 100, "medium")
	s.flag(ctx, "new_giving_flow", "Flujo nuevo de ofrendas", false, 10, "high")

	log.Println("Seed completed.")
}

type seeder struct {
	store *pg.Store
	hash  string
}

func (s *seeder) tenant(ctx context.Context, name, slug string) string {
	t, err := s.store.Tenants().CreateTenant(ctx, repository.CreateTenantInput{Name: name, Slug: slug})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			existing, err := s.store.Tenants().GetTenantBySlug(ctx, slug)
			if err != nil {
				log.Fatalf("tenant %s: %v", slug, err)
			}
			return existing.ID
		}
		log.Fatalf("tenant %s: %v", slug, err)
	}
	log.Printf("tenant %s (%s)", name, t.ID)
	return t.ID
}

func (s *seeder) church(ctx context.Context, tenantID, name, slug string) string {
	c, err := s.store.Tenants().CreateChurch(ctx, repository.CreateChurchInput{
		TenantID: tenantID, Name: name, Slug: slug,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			churches, err := s.store.Tenants().ListChurches(ctx, tenantID)
			if err == nil {
				for _, ch := range churches {
					if ch.Slug == slug {
						return ch.ID
					}
				}
			}
		}
		log.Fatalf("church %s: %v", slug, err)
	}
	log.Printf("church %s (%s)", name, c.ID)
	return c.ID
}

func (s *seeder) user(ctx context.Context, tenantID, churchID, email, name string, role domain.Role) string {
	u, err := s.store.Users().Create(ctx, repository.CreateUserInput{
		TenantID:      tenantID,
		LocalChurchID: churchID,
		Email:         email,
		Name:          name,
		Role:          role,
		PasswordHash:  s.hash,
		AllowContact:  true,
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			existing, err := s.store.Users().GetByEmail(ctx, email)
			if err != nil {
				log.Fatalf("user %s: %v", email, err)
			}
			return existing.ID
		}
		log.Fatalf("user %s: %v", email, err)
	}
	log.Printf("user %s [%s]", email, role)
	return u.ID
}

func (s *seeder) flag(ctx context.Context, name, desc string, enabled bool, rollout int, risk string) {
	if _, err := s.store.Flags().Upsert(ctx, repository.UpsertFlagInput{
		Name:              name,
		Description:       &desc,
		Enabled:           &enabled,
		RolloutPercentage: &rollout,
		RiskLevel:         &risk,
		UpdatedBy:         "seed",
	}); err != nil {
		log.Fatalf("flag %s: %v", name, err)
	}
	log.Printf("flag %s enabled=%v rollout=%d", name, enabled, rollout)
}

// upcoming devuelve la próxima medianoche del día pedido (UTC).
func upcoming(day time.Weekday) time.Time {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for now.Weekday() != day {
		now = now.Add(24 * time.Hour)
	}
	return now
}
