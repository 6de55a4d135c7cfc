package inits

import (
	"context"
	"fmt"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"portfolio-backend/app/server/apperr"
	"portfolio-backend/app/server/auth"
	"portfolio-backend/app/server/models"
	"portfolio-backend/app/server/store"
	"time"
)

type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	Projects      bool
}

// Seed 在数据为空时写入初始管理员与示例项目，已有数据时跳过
func Seed(ctx context.Context, db *gorm.DB, hasher auth.PasswordHasher, l *zap.Logger, opts SeedOptions) (err error) {
	users := store.NewUserStore(db)

	// 初始化管理员
	if exists, err := users.AdminExists(ctx); err != nil {
		return fmt.Errorf("failed to check admin: %w", err)
	} else if exists {
		l.Info("admin user already exists, skipping")
	} else {
		if opts.AdminPassword == "" || !auth.PasswordStrongEnough(opts.AdminPassword) {
			return fmt.Errorf("admin password must contain at least one uppercase letter, one lowercase letter, and one number")
		}

		// 创建密码
		password, err := hasher.Hash(opts.AdminPassword)
		if err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}

		// 插入记录
		admin := &models.User{
			Username: opts.AdminUsername,
			Email:    auth.NormalizeEmail(opts.AdminEmail),
			Role:     models.RoleAdmin,
			IsActive: true,
			Password: password,
			Profile: datatypes.NewJSONType(models.Profile{
				FirstName: "Portfolio",
				LastName:  "Admin",
				Bio:       "Full-stack developer",
			}),
		}
		if err = users.CreateFirstAdmin(ctx, admin); err != nil {
			if apperr.Is(err, apperr.CodeConflict) {
				l.Info("admin user created concurrently, skipping")
			} else {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
		} else {
			l.Info("admin user created", zap.String("username", admin.Username))
		}
	}

	if !opts.Projects {
		return nil
	}

	// 初始化示例项目
	var counter int64
	if err = db.WithContext(ctx).Model(&models.Project{}).Count(&counter).Error; err != nil {
		return fmt.Errorf("failed to get project count: %w", err)
	} else if counter > 0 {
		l.Info("projects already exist, skipping", zap.Int64("count", counter))
		return nil
	}

	projects := sampleProjects()
	if err = db.WithContext(ctx).Create(projects).Error; err != nil {
		return fmt.Errorf("failed to create sample projects: %w", err)
	}
	l.Info("sample projects created", zap.Int("count", len(projects)))

	return nil
}

func sampleProjects() []*models.Project {
	date := func(year int, month time.Month) *time.Time {
		t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return []*models.Project{
		{
			Title:            "E-Commerce Platform",
			Description:      "A full-stack e-commerce platform with product catalog, cart, checkout and an admin dashboard for managing orders and inventory.",
			ShortDescription: "Full-stack e-commerce platform with admin dashboard",
			Technologies:     []string{"React", "Node.js", "PostgreSQL", "Stripe"},
			Category:         models.ProjectCategoryFullstack,
			Image:            "https://images.unsplash.com/photo-1556742049-0cfed4f6a45d",
			Status:           models.ProjectStatusCompleted,
			Difficulty:       models.DifficultyAdvanced,
			Featured:         true,
			IsPublic:         true,
			Order:            1,
			Tags:             []string{"ecommerce", "payments", "dashboard"},
			Highlights:       []string{"Payment integration", "Inventory tracking"},
			StartDate:        date(2023, time.January),
			EndDate:          date(2023, time.April),
		},
		{
			Title:            "Task Management App",
			Description:      "A collaborative task manager with real-time updates, drag and drop boards and team workspaces.",
			ShortDescription: "Collaborative task manager with real-time boards",
			Technologies:     []string{"Vue", "Go", "Redis", "WebSocket"},
			Category:         models.ProjectCategoryFrontend,
			Image:            "https://images.unsplash.com/photo-1484480974693-6ca0a78fb36b",
			Status:           models.ProjectStatusCompleted,
			Difficulty:       models.DifficultyIntermediate,
			Featured:         true,
			IsPublic:         true,
			Order:            2,
			Tags:             []string{"productivity", "realtime"},
			Highlights:       []string{"Live collaboration"},
			StartDate:        date(2023, time.May),
			EndDate:          date(2023, time.July),
		},
		{
			Title:            "AI Content Assistant",
			Description:      "An assistant that drafts and summarises content using large language models with a retrieval pipeline over private documents.",
			ShortDescription: "LLM-powered drafting and summarisation assistant",
			Technologies:     []string{"Python", "FastAPI", "OpenAI"},
			Category:         models.ProjectCategoryAI,
			Image:            "https://images.unsplash.com/photo-1677442136019-21780ecad995",
			Status:           models.ProjectStatusInProgress,
			Difficulty:       models.DifficultyExpert,
			IsPublic:         true,
			Order:            3,
			Tags:             []string{"ai", "nlp"},
			StartDate:        date(2024, time.February),
		},
	}
}
