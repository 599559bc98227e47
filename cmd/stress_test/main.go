package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pos-checkout/internal/adapter/handler"
	"github.com/rl1809/pos-checkout/internal/config"
	"github.com/rl1809/pos-checkout/internal/core/domain"
)

const (
	tenantID      = 1
	branchID      = 1
	userID        = 1
	shiftID       = 1
	totalRequests = 50
)

// Fires concurrent checkouts of one session against a running server and
// checks that exactly one order goes through.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	addr := config.GetEnv("GRPC_ADDR", "localhost:50051")
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()
	client := handler.NewCheckoutClient(conn)

	opened, err := client.OpenSession(ctx, &handler.OpenSessionRequest{
		Context: domain.SessionContext{TenantID: tenantID, BranchID: branchID, UserID: userID},
	})
	if err != nil {
		log.Fatalf("failed to open session: %v", err)
	}
	id := opened.Session.ID
	defer client.CloseSession(context.Background(), &handler.SessionRequest{SessionID: id})

	var item *domain.CatalogItem
	for i := range opened.Session.Catalog {
		if c := opened.Session.Catalog[i]; c.IsActive && c.CurrentQuantity > 0 {
			item = &opened.Session.Catalog[i]
			break
		}
	}
	if item == nil {
		log.Fatalf("tenant %d has no item in stock", tenantID)
	}

	if _, err := client.AddItem(ctx, &handler.ItemRequest{SessionID: id, ItemID: item.ID}); err != nil {
		log.Fatalf("failed to add item: %v", err)
	}
	draft := domain.DefaultDraft()
	draft.ShiftID = shiftID
	if _, err := client.UpdateDraft(ctx, &handler.UpdateDraftRequest{SessionID: id, Draft: draft}); err != nil {
		log.Fatalf("failed to update draft: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var busyCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent checkouts of the same session
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Submit(ctx, &handler.SessionRequest{SessionID: id})
			switch {
			case err == nil:
				successCount.Add(1)
			case status.Code(err) == codes.Aborted, status.Code(err) == codes.FailedPrecondition:
				busyCount.Add(1)
			default:
				failCount.Add(1)
				log.Printf("submit: %v", err)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Item:             %s (%d in stock)\n", item.Name, item.CurrentQuantity)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Submitted:        %d\n", successCount.Load())
	fmt.Printf("Rejected:         %d\n", busyCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if successCount.Load() == 1 && failCount.Load() == 0 {
		fmt.Println("PASS: Exactly 1 order submitted")
	} else {
		fmt.Printf("FAIL: Expected 1 order and 0 failures, got %d/%d\n", successCount.Load(), failCount.Load())
	}

	// Verify the session was reset by the one success
	view, err := client.GetSession(ctx, &handler.SessionRequest{SessionID: id})
	if err != nil {
		log.Fatalf("failed to read session: %v", err)
	}
	if len(view.Session.Lines) == 0 && view.Session.LastReceipt != nil {
		fmt.Printf("PASS: Cart cleared, order %d\n", view.Session.LastReceipt.OrderID)
	} else {
		fmt.Printf("FAIL: Expected empty cart with receipt, got %d lines\n", len(view.Session.Lines))
	}
}
