package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/example/asati/internal/datamodels/order"
	"github.com/example/asati/internal/datamodels/user"
	"github.com/example/asati/internal/store"
)

// 简单 demo：不依赖任何外部服务，在内存里跑一遍管理员建用户、用户下单、管理员审核，
// 可用 -seed 检查自定义种子目录能否正常加载
func main() {
	seedPath := flag.String("seed", "", "seed catalog yaml, empty for the built-in catalog")
	flag.Parse()

	var opts []store.Option
	if *seedPath != "" {
		seed, err := store.LoadSeedFile(*seedPath)
		if err != nil {
			log.Fatalf("load seed failed: %v", err)
		}
		opts = append(opts, store.WithSeed(seed))
	}
	st := store.New(append(opts, store.WithNotificationTTL(0))...)
	ctx := context.Background()

	fmt.Println("商品目录:")
	for _, p := range st.Products() {
		fmt.Printf("  #%d %-32s %8s  %s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Category)
	}
	if len(st.Products()) == 0 {
		log.Fatal("catalog is empty")
	}

	admin := st.NewSession()
	if _, err := st.Login(ctx, admin, "admin", "admin"); err != nil {
		log.Fatalf("admin login failed: %v", err)
	}
	u, err := st.CreateUser(ctx, admin, user.NewUser{
		Name: "Demo Weaver", Email: "demo@asati.com", Password: "demo", Address: "Handloom Lane",
	})
	if err != nil {
		log.Fatalf("create user failed: %v", err)
	}
	fmt.Println("创建用户:", u.ID)

	shopper := st.NewSession()
	if _, err := st.Login(ctx, shopper, u.ID, "demo"); err != nil {
		log.Fatalf("user login failed: %v", err)
	}
	first := st.Products()[0]
	sum, err := st.AddToCart(ctx, shopper, first.ID, 2)
	if err != nil {
		log.Fatalf("add to cart failed: %v", err)
	}
	fmt.Printf("购物车: %d 件, 小计 %s, 税 %s, 合计 %s\n",
		sum.ItemCount, sum.Subtotal.StringFixed(2), sum.Tax.StringFixed(2), sum.Total.StringFixed(2))

	o, err := st.PlaceOrder(ctx, shopper)
	if err != nil {
		log.Fatalf("place order failed: %v", err)
	}
	fmt.Printf("下单成功: %s (%s)\n", o.ID, o.Status)

	if _, err := st.UpdateOrderStatus(ctx, admin, o.ID, string(order.StatusApproved)); err != nil {
		log.Fatalf("approve failed: %v", err)
	}
	if n, _ := st.Notification(admin); n != nil {
		fmt.Println("管理员通知:", n.Message)
	}
	fmt.Printf("待审核订单: %d\n", st.PendingCount())
}
