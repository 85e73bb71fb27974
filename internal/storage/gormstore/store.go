package gormstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/UkralStul/blog-service/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage поверх GORM (PostgreSQL или SQLite).
type Store struct {
	db *gorm.DB
}

// OpenPostgres подключается к PostgreSQL.
func OpenPostgres(dsn string, logSQL bool) (*Store, error) {
	return Open(postgres.Open(dsn), logSQL)
}

// OpenSQLite открывает файл базы SQLite. Внешние ключи включаются явно,
// иначе SQLite их не проверяет.
func OpenSQLite(path string, logSQL bool) (*Store, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	store, err := Open(sqlite.Open(dsn), logSQL)
	if err != nil {
		return nil, err
	}
	sqlDB, err := store.db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite допускает одного писателя
	sqlDB.SetMaxOpenConns(1)
	return store, nil
}

// Open создает хранилище с заданным диалектом и выполняет миграцию схемы.
func Open(dialector gorm.Dialector, logSQL bool) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger(log.New(os.Stdout, "\r\n", log.LstdFlags), logSQL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.Migrate(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// newLogger пишет медленные запросы и ошибки, а с logSQL - каждый запрос.
// Отсутствие записи - штатный ответ (404, проверка email), его не логируем.
func newLogger(out logger.Writer, logSQL bool) logger.Interface {
	level := logger.Warn
	if logSQL {
		level = logger.Info
	}
	return logger.New(out, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  true,
	})
}

// Migrate создает таблицы users, blog_posts и comments.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&domain.User{}, &domain.Post{}, &domain.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === User Methods ===

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	u := *user
	u.ID = 0
	u.IsAdmin = false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Предварительная проверка ради понятной ошибки.
		// Источник истины - уникальный индекс.
		var count int64
		if err := tx.Model(&domain.User{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateEmail
		}

		if err := tx.Create(&u).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateEmail
			}
			return err
		}

		if u.ID == domain.AdminUserID {
			if err := tx.Model(&u).Update("is_admin", true).Error; err != nil {
				return err
			}
			u.IsAdmin = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "user with id %d", id)
	}
	return &user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, notFound(err, "user with email %q", email)
	}
	return &user, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}

// === Post Methods ===

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	p := *post
	p.ID = 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTitleFree(tx, p.Title, 0); err != nil {
			return err
		}
		if err := tx.Create(&p).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetPostByID(ctx context.Context, id uint) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "post with id %d", id)
	}
	return &post, nil
}

func (s *Store) GetPosts(ctx context.Context) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).Order("id ASC").Find(&posts).Error
	return posts, err
}

func (s *Store) UpdatePost(ctx context.Context, id uint, fields domain.PostFields) (*domain.Post, error) {
	var post domain.Post
	// Используем транзакцию для атомарности операции чтения-записи
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return notFound(err, "post with id %d", id)
		}
		if err := checkTitleFree(tx, fields.Title, id); err != nil {
			return err
		}

		fields.Apply(&post)
		// Дата создания в список обновляемых колонок не входит
		err := tx.Model(&post).
			Select("title", "subtitle", "author", "img_url", "body").
			Updates(&post).Error
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id").First(&post, "id = ?", id).Error; err != nil {
			return notFound(err, "post with id %d", id)
		}
		// Явный каскад: не полагаемся только на ON DELETE CASCADE
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Post{}, id).Error
	})
}

// === Comment Methods ===

func (s *Store) CreateComment(ctx context.Context, comment *domain.Comment) (*domain.Comment, error) {
	c := *comment
	c.ID = 0
	c.Author, c.Post = nil, nil

	// Проверяем существование поста и создаем комментарий в одной транзакции
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id").First(&post, "id = ?", c.PostID).Error; err != nil {
			return notFound(err, "post with id %d", c.PostID)
		}
		if err := tx.Create(&c).Error; err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("comment references: %w", domain.ErrNotFound)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCommentsByPostID(ctx context.Context, postID uint) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error
	return comments, err
}

func (s *Store) GetCommentsByAuthorID(ctx context.Context, authorID uint) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := s.db.WithContext(ctx).Where("author_id = ?", authorID).Order("id ASC").Find(&comments).Error
	return comments, err
}

func (s *Store) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Comment{}).Count(&count).Error
	return count, err
}

// === Dataloader Method ===

func (s *Store) GetUsersByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	var users []*domain.User
	// Загружаем всех пользователей одним запросом
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]*domain.User, len(users))
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func checkTitleFree(tx *gorm.DB, title string, exceptID uint) error {
	var count int64
	err := tx.Model(&domain.Post{}).Where("title = ? AND id <> ?", title, exceptID).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrConflict
	}
	return nil
}

// notFound переводит gorm.ErrRecordNotFound в domain.ErrNotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, domain.ErrNotFound)...)
	}
	return err
}
