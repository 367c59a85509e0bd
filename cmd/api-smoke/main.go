package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"
)

var client = &http.Client{Timeout: 5 * time.Second}

// 对运行中的前台 / 后台服务跑一遍完整流程：建会话、管理员建用户、用户下单、管理员审核、限流
func main() {
	baseURL := flag.String("shop", "http://localhost:8080", "storefront base url")
	adminURL := flag.String("admin", "http://localhost:8081", "admin base url")
	burst := flag.Int("burst", 300, "requests sent in the rate limit check")
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("    完整API测试")
	fmt.Println("==========================================")

	// 1. 管理员会话
	fmt.Println("\n1. 管理员登录...")
	adminToken, err := openSession(*adminURL)
	if err != nil {
		fmt.Printf("   创建会话失败: %v\n", err)
		return
	}
	login, err := call(http.MethodPost, *adminURL+"/api/login", adminToken, map[string]string{"id": "admin", "password": "admin"})
	if err != nil {
		fmt.Printf("   登录失败: %v\n", err)
		return
	}
	adminToken = dataString(login, "token")

	// 2. 创建用户
	fmt.Println("\n2. 创建用户...")
	created, err := call(http.MethodPost, *adminURL+"/api/users", adminToken, map[string]string{
		"name":     "smoke",
		"email":    "smoke@example.com",
		"password": "smoke-pass",
		"address":  "Loom Street 1",
	})
	if err != nil {
		fmt.Printf("   创建失败: %v\n", err)
		return
	}
	userID := dataString(created, "id")
	fmt.Printf("   用户 ID: %s\n", userID)

	// 3. 用户登录并下单
	fmt.Println("\n3. 用户下单...")
	token, err := openSession(*baseURL)
	if err != nil {
		fmt.Printf("   创建会话失败: %v\n", err)
		return
	}
	login, err = call(http.MethodPost, *baseURL+"/api/login", token, map[string]string{"id": userID, "password": "smoke-pass"})
	if err != nil {
		fmt.Printf("   登录失败: %v\n", err)
		return
	}
	token = dataString(login, "token")
	if _, err := call(http.MethodPost, *baseURL+"/api/cart", token, map[string]int{"product_id": 1, "quantity": 2}); err != nil {
		fmt.Printf("   加购失败: %v\n", err)
		return
	}
	placed, err := call(http.MethodPost, *baseURL+"/api/orders", token, nil)
	if err != nil {
		fmt.Printf("   下单失败: %v\n", err)
		return
	}
	orderID := dataString(placed, "id")
	fmt.Printf("   订单: %s, 金额: %s\n", orderID, dataString(placed, "total"))

	// 4. 管理员审核
	fmt.Println("\n4. 审核订单...")
	if _, err := call(http.MethodPut, *adminURL+"/api/orders/"+orderID+"/status", adminToken, map[string]string{"status": "approved"}); err != nil {
		fmt.Printf("   审核失败: %v\n", err)
	} else {
		fmt.Println("   已通过")
	}

	// 5. 监控
	fmt.Println("\n5. 监控统计...")
	if stats, err := call(http.MethodGet, *adminURL+"/api/monitor", adminToken, nil); err != nil {
		fmt.Printf("   失败: %v\n", err)
	} else {
		fmt.Printf("   %v\n", stats["data"])
	}

	// 6. 限流
	fmt.Printf("\n6. 发送 %d 个快速请求...\n", *burst)
	ok, limited := 0, 0
	for i := 0; i < *burst; i++ {
		status, err := rawStatus(*baseURL + "/api/products")
		switch {
		case err != nil:
		case status == http.StatusTooManyRequests:
			limited++
		case status == http.StatusOK:
			ok++
		}
	}
	fmt.Printf("   成功: %d, 限流: %d\n", ok, limited)

	fmt.Println("\n==========================================")
	fmt.Println("测试完成！")
	fmt.Println("==========================================")
}

func openSession(base string) (string, error) {
	resp, err := call(http.MethodPost, base+"/api/session", "", nil)
	if err != nil {
		return "", err
	}
	return dataString(resp, "token"), nil
}

func dataString(resp map[string]interface{}, key string) string {
	data, _ := resp["data"].(map[string]interface{})
	v, _ := data[key].(string)
	return v
}

func rawStatus(url string) (int, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func call(method, url, token string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var result map[string]interface{}
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, fmt.Errorf("JSON解析失败: %v, 响应: %s", err, string(bodyBytes))
	}
	return result, nil
}
