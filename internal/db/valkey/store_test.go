package valkey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/citrination/internal/db"
)

// --- client.go tests ---

func TestNewStore_NoAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newTestStore(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestWaitForReady_Immediate(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := newTestStore(c)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	s := newTestStore(c)
	err := s.WaitForReady(context.Background(), 150*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

// --- hash.go tests ---

func TestHSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "HSET" && cmd[1] == "upload:1" && len(cmd) == 4
		})).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newTestStore(c)
	if err := s.HSet(context.Background(), "upload:1", map[string]string{"file_name": "a.json"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(errors.New("connection refused")))

	s := newTestStore(c)
	err := s.HSet(context.Background(), "k", map[string]string{"f": "v"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHSetNX(t *testing.T) {
	tests := []struct {
		name  string
		reply int64
		want  bool
	}{
		{"set", 1, true},
		{"present", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("HSETNX", "datasets", "7", "{}")).
				Return(mock.Result(mock.RedisInt64(tc.reply)))

			s := newTestStore(c)
			ok, err := s.HSetNX(context.Background(), "datasets", "7", "{}")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.want {
				t.Errorf("HSetNX = %v, want %v", ok, tc.want)
			}
		})
	}
}

func TestHGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGET", "datasets", "7")).
		Return(mock.Result(mock.RedisString(`{"id":7}`)))

	s := newTestStore(c)
	v, err := s.HGet(context.Background(), "datasets", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != `{"id":7}` {
		t.Errorf("HGet = %q", v)
	}
}

func TestHGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGET", "datasets", "8")).
		Return(mock.Result(mock.RedisNil()))

	s := newTestStore(c)
	_, err := s.HGet(context.Background(), "datasets", "8")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestHGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	_, err := s.HGet(context.Background(), "datasets", "8")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "files:1")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"a.json":     mock.RedisString("a"),
			"dir/b.json": mock.RedisString("b"),
		})))

	s := newTestStore(c)
	m, err := s.HGetAll(context.Background(), "files:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["a.json"] != "a" || m["dir/b.json"] != "b" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "files:1")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	if _, err := s.HGetAll(context.Background(), "files:1"); !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestDel(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "upload:1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newTestStore(c)
	if err := s.Del(context.Background(), "upload:1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXISTS", "upload:1")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newTestStore(c)
	ok, err := s.Exists(context.Background(), "upload:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected key to exist")
	}
}

// --- list.go tests ---

func TestRPush(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("RPUSH", "pifs", "a", "b")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := newTestStore(c)
	if err := s.RPush(context.Background(), "pifs", "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRPush_Empty(t *testing.T) {
	s := newTestStore(nil)
	if err := s.RPush(context.Background(), "pifs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("LRANGE", "pifs", "0", "-1")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("a"), mock.RedisString("b"))))

	s := newTestStore(c)
	vals, err := s.LRange(context.Background(), "pifs", 0, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 2 || vals[0] != "a" || vals[1] != "b" {
		t.Errorf("LRange = %v", vals)
	}
}

func TestLRange_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	if _, err := s.LRange(context.Background(), "pifs", 0, -1); !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

// --- kv.go tests ---

func TestIncr(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("INCR", "datasets:seq")).
		Return(mock.Result(mock.RedisInt64(3)))

	s := newTestStore(c)
	n, err := s.Incr(context.Background(), "datasets:seq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("Incr = %d, want 3", n)
	}
}

func TestExpire(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("EXPIRE", "upload:1", "3600")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := newTestStore(c)
	if err := s.Expire(context.Background(), "upload:1", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpire_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := newTestStore(c)
	err := s.Expire(context.Background(), "upload:1", time.Hour)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpExpire {
		t.Errorf("expected EXPIRE db.Error, got %v", err)
	}
}

func newTestStore(c rueidis.Client) *Store {
	return &Store{client: c}
}

func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
