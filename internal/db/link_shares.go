package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"engagehub/internal/feed"
)

// SaveLinkShares upserts reconciled feed entries into the archive. Block
// height never decreases and the first AddedAt is kept.
func (d *DB) SaveLinkShares(ctx context.Context, entries []feed.LinkEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `
		INSERT INTO link_shares (key, user_address, link, transaction_hash, block_number, added_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			user_address     = EXCLUDED.user_address,
			link             = EXCLUDED.link,
			transaction_hash = COALESCE(EXCLUDED.transaction_hash, link_shares.transaction_hash),
			block_number     = GREATEST(link_shares.block_number, EXCLUDED.block_number),
			archived_at      = NOW()
	`

	batch := &pgx.Batch{}
	for _, e := range entries {
		if e.Key == "" {
			return ErrLinkShareNoKey
		}
		batch.Queue(query, e.Key, e.User, e.Link, e.TransactionHash, int64(e.BlockNumber), e.AddedAt)
	}

	return d.Pool.SendBatch(ctx, batch).Close()
}

// RecentLinkShares returns up to limit archived shares, newest first.
func (d *DB) RecentLinkShares(ctx context.Context, limit int) ([]feed.RawLink, error) {
	query := `
		SELECT user_address, link, COALESCE(transaction_hash, ''), block_number, added_at
		FROM link_shares
		ORDER BY block_number DESC, added_at DESC
		LIMIT $1
	`

	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []feed.RawLink
	for rows.Next() {
		var l feed.RawLink
		var block int64
		if err := rows.Scan(&l.User, &l.Link, &l.TransactionHash, &block, &l.AddedAt); err != nil {
			return nil, err
		}
		l.BlockNumber = uint64(block)
		links = append(links, l)
	}

	return links, rows.Err()
}
