package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/training-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/training-manager/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var trainingID int64

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机培训, 3: 插入随机报名记录)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&trainingID, "training-id", 0, "随机插入报名记录的培训 ID")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}
		seed.InsertRandomUsers(repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain)
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的培训数量")
			return
		}
		seed.InsertRandomTrainings(repo, n)
	case 3:
		if trainingID <= 0 {
			slog.Error("请输入合法的培训 ID")
			return
		}
		seed.InsertRandomEnrollments(repo, trainingID)
	default:
		slog.Error("指定的操作非法")
	}
}
