package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-directory/internal/domain/user"
	pkgerrors "user-directory/pkg/errors"
	"user-directory/pkg/logger"
)

// Statements issued by the repository, used to label query errors.
const (
	ListUsersQuery   = "SELECT id, name, email FROM users ORDER BY id ASC"
	GetUserByIDQuery = "SELECT id, name, email FROM users WHERE id = ?"
)

// MySQL server error numbers that mean the session itself is unusable.
var connectionErrorNumbers = map[uint16]struct{}{
	1040: {}, // ER_CON_COUNT_ERROR
	1044: {}, // ER_DBACCESS_DENIED_ERROR
	1045: {}, // ER_ACCESS_DENIED_ERROR
	1049: {}, // ER_BAD_DB_ERROR
	1129: {}, // ER_HOST_IS_BLOCKED
	1130: {}, // ER_HOST_NOT_PRIVILEGED
	1203: {}, // ER_TOO_MANY_USER_CONNECTIONS
}

// UserRepoMySQL implements the user Repository with GORM. It targets MySQL
// but only issues portable SQL, so any GORM dialector can back it.
type UserRepoMySQL struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoMySQL creates a new instance of UserRepoMySQL.
func NewUserRepoMySQL(db *gorm.DB, log *zap.Logger) *UserRepoMySQL {
	return &UserRepoMySQL{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"size:255;not null"`
	Email string `gorm:"size:255;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m UserSchema) toDomain() user.User {
	return user.User{ID: m.ID, Name: m.Name, Email: m.Email}
}

// connect acquires a dedicated session from the pool and verifies it.
// The caller must Close the returned connection.
func (r *UserRepoMySQL) connect(ctx context.Context) (*sql.Conn, error) {
	sqlDB, err := r.db.DB()
	if err != nil {
		return nil, pkgerrors.NewConnectionError("connect", err)
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, pkgerrors.NewConnectionError("connect", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, pkgerrors.NewConnectionError("ping", err)
	}

	return conn, nil
}

// session returns a GORM handle bound to conn.
func (r *UserRepoMySQL) session(ctx context.Context, conn *sql.Conn) *gorm.DB {
	tx := r.db.WithContext(ctx)
	tx.Statement.ConnPool = conn
	return tx
}

// List runs ListUsersQuery on a freshly verified session and releases the
// session before returning. A failed connect never reaches the query.
func (r *UserRepoMySQL) List(ctx context.Context) ([]user.User, error) {
	log := logger.WithContext(ctx, r.log)

	conn, err := r.connect(ctx)
	if err != nil {
		log.Error("failed to open database session", zap.Error(err))
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) {
			log.Warn("failed to release database session", zap.Error(cerr))
		}
	}()

	var models []UserSchema
	err = r.session(ctx, conn).
		Model(&UserSchema{}).
		Select("id", "name", "email").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		log.Error("failed to list users from db", zap.Error(err))
		return nil, classify(ListUsersQuery, err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}

	return users, nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepoMySQL) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Select("id", "name", "email").
		Where("id = ?", id).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithContext(ctx, r.log).Debug("user not found", zap.Int64("id", id))
			return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, classify(GetUserByIDQuery, err)
	}

	u := model.toDomain()
	return &u, nil
}

// Ping verifies that a database session can be established.
func (r *UserRepoMySQL) Ping(ctx context.Context) error {
	conn, err := r.connect(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// classify maps a statement error to ConnectionError when the session was
// lost underneath it, QueryError otherwise.
func classify(query string, err error) error {
	if isConnectionFailure(err) {
		return pkgerrors.NewConnectionError("query", err)
	}
	return pkgerrors.NewQueryError(query, err)
}

func isConnectionFailure(err error) bool {
	// A query that outlives its deadline ran on a live session
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, mysqldriver.ErrInvalidConn) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		_, ok := connectionErrorNumbers[myErr.Number]
		return ok
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// database/sql does not export its closed-pool sentinel
	return strings.Contains(err.Error(), "sql: database is closed")
}
