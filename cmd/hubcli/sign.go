package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"go.vocdoni.io/hub/api"
	"go.vocdoni.io/hub/crypto/ethereum"
	"go.vocdoni.io/hub/hub"
	"go.vocdoni.io/hub/hub/sigs"
	"go.vocdoni.io/hub/types"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign an operation so that anyone can relay it to the hub",
	Long: `Sign an operation with EIP-712 typed data. The signing domain and the
signer nonce are fetched from the hub API unless --nonce is given. The signed
payload is printed, or relayed to the hub with --send.`,
}

// flag values of the sign subcommands
var (
	profileID  uint64
	pubID      uint64
	pointedID  uint64
	pointedPub uint64
	tokenID    uint64
	address    string
	collection string
	uri        string
	module     string
	moduleData string
	refModule  string
	refData    string
	actionData string
	profileIDs []uint
)

func signer() (*ethereum.SignKeys, error) {
	if keyHex == "" {
		return nil, fmt.Errorf("--key is required")
	}
	k := &ethereum.SignKeys{}
	if err := k.AddHexKey(keyHex); err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	return k, nil
}

func parseAddress(flag, s string) (common.Address, error) {
	if s == "" {
		return types.ZeroAddress, nil
	}
	if !common.IsHexAddress(s) {
		return types.ZeroAddress, fmt.Errorf("--%s: invalid address %q", flag, s)
	}
	return common.HexToAddress(s), nil
}

func parseBytes(flag, s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return b, nil
}

// signed signs msg under the domain returned by domainFn, wraps the
// authorization with build and prints or relays the payload.
func signed(op string, domainFn func(c *client) (sigs.Domain, error), msg sigs.Message,
	build func(k *ethereum.SignKeys, auth *sigs.Authorization) any,
) error {
	k, err := signer()
	if err != nil {
		return err
	}
	c := newClient(hubURL)
	d, err := domainFn(c)
	if err != nil {
		return fmt.Errorf("cannot fetch signing domain: %w", err)
	}
	n := uint64(nonce)
	if nonce < 0 {
		if n, err = c.nonce(k.Address()); err != nil {
			return fmt.Errorf("cannot fetch nonce: %w", err)
		}
	}
	auth, err := sigs.Sign(k, d, msg, n, uint64(time.Now().Add(deadline).Unix()))
	if err != nil {
		return err
	}
	payload := build(k, auth)
	var out any = payload
	if send {
		if out, err = c.relay(op, payload); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(Stdout, string(data))
	return nil
}

func hubDomain(c *client) (sigs.Domain, error) { return c.domain() }

var signDispatcherCmd = &cobra.Command{
	Use:   "setDispatcher",
	Short: "Set or clear the dispatcher of a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		dispatcher, err := parseAddress("address", address)
		if err != nil {
			return err
		}
		id := types.ProfileID(profileID)
		return signed("setDispatcher", hubDomain, sigs.SetDispatcher(id, dispatcher),
			func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
				return &api.SetDispatcherWithSig{ProfileID: id, Dispatcher: dispatcher, Auth: auth}
			})
	},
}

var signImageURICmd = &cobra.Command{
	Use:   "setProfileImageURI",
	Short: "Change the image of a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		id := types.ProfileID(profileID)
		return signed("setProfileImageURI", hubDomain, sigs.SetProfileImageURI(id, uri),
			func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
				return &api.SetProfileImageURIWithSig{ProfileID: id, ImageURI: uri, Auth: auth}
			})
	},
}

var signFollowModuleCmd = &cobra.Command{
	Use:   "setFollowModule",
	Short: "Change the follow module of a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := parseAddress("module", module)
		if err != nil {
			return err
		}
		data, err := parseBytes("moduleData", moduleData)
		if err != nil {
			return err
		}
		id := types.ProfileID(profileID)
		return signed("setFollowModule", hubDomain, sigs.SetFollowModule(id, m, data),
			func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
				return &api.SetFollowModuleWithSig{ProfileID: id, FollowModule: m, FollowModuleInitData: data, Auth: auth}
			})
	},
}

// publicationModules parses the collect and reference module flags.
func publicationModules() (collect common.Address, collectData []byte, ref common.Address, refInit []byte, err error) {
	if collect, err = parseAddress("module", module); err != nil {
		return
	}
	if collectData, err = parseBytes("moduleData", moduleData); err != nil {
		return
	}
	if ref, err = parseAddress("referenceModule", refModule); err != nil {
		return
	}
	refInit, err = parseBytes("referenceData", refData)
	return
}

var signPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		collect, collectData, ref, refInit, err := publicationModules()
		if err != nil {
			return err
		}
		req := hub.PostRequest{
			ProfileID:               types.ProfileID(profileID),
			ContentURI:              uri,
			CollectModule:           collect,
			CollectModuleInitData:   collectData,
			ReferenceModule:         ref,
			ReferenceModuleInitData: refInit,
		}
		msg := sigs.Post(req.ProfileID, req.ContentURI, collect, collectData, ref, refInit)
		return signed("post", hubDomain, msg, func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
			return &api.PostWithSig{PostRequest: req, Auth: auth}
		})
	},
}

var signCommentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Comment on a publication",
	RunE: func(cmd *cobra.Command, args []string) error {
		collect, collectData, ref, refInit, err := publicationModules()
		if err != nil {
			return err
		}
		data, err := parseBytes("data", actionData)
		if err != nil {
			return err
		}
		req := hub.CommentRequest{
			ProfileID:               types.ProfileID(profileID),
			ContentURI:              uri,
			Pointed:                 types.PubPointer{ProfileID: types.ProfileID(pointedID), PubID: types.PubID(pointedPub)},
			ReferenceModuleData:     data,
			CollectModule:           collect,
			CollectModuleInitData:   collectData,
			ReferenceModule:         ref,
			ReferenceModuleInitData: refInit,
		}
		msg := sigs.Comment(req.ProfileID, req.ContentURI, req.Pointed, data, collect, collectData, ref, refInit)
		return signed("comment", hubDomain, msg, func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
			return &api.CommentWithSig{CommentRequest: req, Auth: auth}
		})
	},
}

var signMirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror a publication",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := parseAddress("referenceModule", refModule)
		if err != nil {
			return err
		}
		refInit, err := parseBytes("referenceData", refData)
		if err != nil {
			return err
		}
		data, err := parseBytes("data", actionData)
		if err != nil {
			return err
		}
		req := hub.MirrorRequest{
			ProfileID:               types.ProfileID(profileID),
			Pointed:                 types.PubPointer{ProfileID: types.ProfileID(pointedID), PubID: types.PubID(pointedPub)},
			ReferenceModuleData:     data,
			ReferenceModule:         ref,
			ReferenceModuleInitData: refInit,
		}
		msg := sigs.Mirror(req.ProfileID, req.Pointed, data, ref, refInit)
		return signed("mirror", hubDomain, msg, func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
			return &api.MirrorWithSig{MirrorRequest: req, Auth: auth}
		})
	},
}

var signFollowCmd = &cobra.Command{
	Use:   "follow",
	Short: "Follow one or more profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(profileIDs) == 0 {
			return fmt.Errorf("--profiles is required")
		}
		data, err := parseBytes("data", actionData)
		if err != nil {
			return err
		}
		ids := make([]types.ProfileID, len(profileIDs))
		datas := make([][]byte, len(profileIDs))
		for i, id := range profileIDs {
			ids[i] = types.ProfileID(id)
			datas[i] = data
		}
		return signed("follow", hubDomain, sigs.Follow(ids, datas),
			func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
				return &api.FollowWithSig{ProfileIDs: ids, Datas: datas, Auth: auth}
			})
	},
}

var signCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect a publication",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseBytes("data", actionData)
		if err != nil {
			return err
		}
		req := hub.CollectRequest{ProfileID: types.ProfileID(profileID), PubID: types.PubID(pubID), Data: data}
		msg := sigs.Collect(types.PubPointer{ProfileID: req.ProfileID, PubID: req.PubID}, data)
		return signed("collect", hubDomain, msg, func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
			return &api.CollectWithSig{CollectRequest: req, Auth: auth}
		})
	},
}

var signBurnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Burn a follow or collect NFT",
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := parseAddress("collection", collection)
		if err != nil {
			return err
		}
		domain := func(c *client) (sigs.Domain, error) { return c.collectionDomain(col) }
		return signed("burn", domain, sigs.Burn(tokenID), func(_ *ethereum.SignKeys, auth *sigs.Authorization) any {
			return &api.BurnWithSig{Collection: col, TokenID: tokenID, Auth: auth}
		})
	},
}

var signDelegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Delegate the governance power of a follow NFT collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := parseAddress("collection", collection)
		if err != nil {
			return err
		}
		delegatee, err := parseAddress("address", address)
		if err != nil {
			return err
		}
		k, err := signer()
		if err != nil {
			return err
		}
		domain := func(c *client) (sigs.Domain, error) { return c.collectionDomain(col) }
		return signed("delegate", domain, sigs.Delegate(k.Address(), delegatee),
			func(k *ethereum.SignKeys, auth *sigs.Authorization) any {
				return &api.DelegateBySig{Collection: col, Delegator: k.Address(), Delegatee: delegatee, Auth: auth}
			})
	},
}

func init() {
	signCmd.PersistentFlags().StringVarP(&keyHex, "key", "k", "", "signer private hexadecimal key")
	signCmd.PersistentFlags().DurationVar(&deadline, "deadline", time.Hour, "signature validity")
	signCmd.PersistentFlags().Int64VarP(&nonce, "nonce", "n", -1,
		"signer nonce (fetched from the hub if negative, useful for offline signing)")
	signCmd.PersistentFlags().BoolVar(&send, "send", false, "relay the signed operation to the hub")

	for _, cmd := range []*cobra.Command{
		signDispatcherCmd, signImageURICmd, signFollowModuleCmd,
		signPostCmd, signCommentCmd, signMirrorCmd, signCollectCmd,
	} {
		cmd.Flags().Uint64Var(&profileID, "profile", 0, "profile ID")
	}
	signDispatcherCmd.Flags().StringVar(&address, "address", "", "dispatcher address, empty to clear")
	signImageURICmd.Flags().StringVar(&uri, "uri", "", "image URI")
	signFollowModuleCmd.Flags().StringVar(&module, "module", "", "follow module address, empty for none")
	signFollowModuleCmd.Flags().StringVar(&moduleData, "moduleData", "", "follow module init data (hex)")

	for _, cmd := range []*cobra.Command{signPostCmd, signCommentCmd} {
		cmd.Flags().StringVar(&uri, "uri", "", "content URI")
		cmd.Flags().StringVar(&module, "module", "", "collect module address")
		cmd.Flags().StringVar(&moduleData, "moduleData", "", "collect module init data (hex)")
	}
	for _, cmd := range []*cobra.Command{signPostCmd, signCommentCmd, signMirrorCmd} {
		cmd.Flags().StringVar(&refModule, "referenceModule", "", "reference module address")
		cmd.Flags().StringVar(&refData, "referenceData", "", "reference module init data (hex)")
	}
	for _, cmd := range []*cobra.Command{signCommentCmd, signMirrorCmd} {
		cmd.Flags().Uint64Var(&pointedID, "pointedProfile", 0, "profile ID of the pointed publication")
		cmd.Flags().Uint64Var(&pointedPub, "pointedPub", 0, "ID of the pointed publication")
		cmd.Flags().StringVar(&actionData, "data", "", "data for the pointed reference module (hex)")
	}
	signFollowCmd.Flags().UintSliceVar(&profileIDs, "profiles", nil, "profile IDs to follow (comma-separated)")
	signFollowCmd.Flags().StringVar(&actionData, "data", "", "data for every follow module (hex)")
	signCollectCmd.Flags().Uint64Var(&pubID, "pub", 0, "publication ID")
	signCollectCmd.Flags().StringVar(&actionData, "data", "", "data for the collect module (hex)")
	for _, cmd := range []*cobra.Command{signBurnCmd, signDelegateCmd} {
		cmd.Flags().StringVar(&collection, "collection", "", "NFT collection address")
	}
	signBurnCmd.Flags().Uint64Var(&tokenID, "token", 0, "token ID")
	signDelegateCmd.Flags().StringVar(&address, "address", "", "delegatee address")

	signCmd.AddCommand(
		signDispatcherCmd, signImageURICmd, signFollowModuleCmd,
		signPostCmd, signCommentCmd, signMirrorCmd,
		signFollowCmd, signCollectCmd, signBurnCmd, signDelegateCmd,
	)
}
