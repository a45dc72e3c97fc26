package counter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	c "github.com/d0ngw/viewcount/common"
	"github.com/d0ngw/viewcount/orm"
)

// DefaultTable the default table of DBStore
const DefaultTable = "view_count"

// MaxIDLen id的最大字节数,id列按字节比较和存储
const MaxIDLen = 256

// DBStore keeps the totals in a mysql table,it implements both Store and Persist
type DBStore struct {
	pool    *orm.DBPool
	table   string
	retries int
	now     func() time.Time
}

// NewDBStore create DBStore,retries is the max retry times when the increment transaction conflicts
func NewDBStore(pool *orm.DBPool, table string, retries int) (*DBStore, error) {
	if pool == nil {
		return nil, errors.New("pool must be set")
	}
	if table == "" {
		table = DefaultTable
	}
	if retries < 0 {
		retries = 0
	}
	return &DBStore{pool: pool, table: table, retries: retries, now: time.Now}, nil
}

// CreateTable create the counter table if not exists
func (p *DBStore) CreateTable(ctx context.Context) error {
	_, err := p.pool.DB.ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"`id` VARBINARY(%d) NOT NULL,"+
		"`total` BIGINT NOT NULL DEFAULT 0,"+
		"`ut` BIGINT NOT NULL DEFAULT 0,"+
		"PRIMARY KEY (`id`)"+
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", p.table, MaxIDLen))
	return err
}

// Incr implements Store.Incr.The row is locked by SELECT ... FOR UPDATE,
// a deadlock or a duplicate insert of a concurrent first view retries the whole transaction.
func (p *DBStore) Incr(ctx context.Context, id string) (total int64, err error) {
	if id == "" {
		return 0, ErrEmptyID
	}
	for i := 0; ; i++ {
		err = p.pool.DoInTransRetry(ctx, p.retries, func(tx *sql.Tx) error {
			var incrErr error
			total, incrErr = p.incrInTx(ctx, tx, id)
			return incrErr
		})
		if err == nil || !orm.IsDupEntry(err) || i >= p.retries {
			return total, err
		}
		c.Debugf("concurrent first view of %s,retry", id)
	}
}

func (p *DBStore) incrInTx(ctx context.Context, tx *sql.Tx, id string) (int64, error) {
	var current int64
	ut := c.UnixMills(p.now())
	err := tx.QueryRowContext(ctx, fmt.Sprintf("SELECT `total` FROM `%s` WHERE `id` = ? FOR UPDATE", p.table), id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO `%s` (`id`,`total`,`ut`) VALUES (?,?,?)", p.table), id, 1, ut)
		if err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx, fmt.Sprintf("UPDATE `%s` SET `total` = ?,`ut` = ? WHERE `id` = ?", p.table), current+1, ut, id)
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// Get implements Store.Get
func (p *DBStore) Get(ctx context.Context, id string) (total int64, exist bool, err error) {
	err = p.pool.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT `total` FROM `%s` WHERE `id` = ?", p.table), id).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return total, true, nil
}

// Load implements Persist.Load
func (p *DBStore) Load(ctx context.Context, id string) (int64, bool, error) {
	return p.Get(ctx, id)
}

// Store implements Persist.Store
func (p *DBStore) Store(ctx context.Context, id string, total int64) error {
	if id == "" {
		return ErrEmptyID
	}
	_, err := p.pool.DB.ExecContext(ctx, fmt.Sprintf("INSERT INTO `%s` (`id`,`total`,`ut`) VALUES (?,?,?) "+
		"ON DUPLICATE KEY UPDATE `total` = GREATEST(`total`,VALUES(`total`)),`ut` = VALUES(`ut`)", p.table), id, total, c.UnixMills(p.now()))
	return err
}
